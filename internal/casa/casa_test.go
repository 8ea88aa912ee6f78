package casa

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandSpw(t *testing.T) {
	spws, err := ExpandSpw("1~3")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, spws)

	spws, err = ExpandSpw("1, 3,4")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "3", "4"}, spws)

	spws, err = ExpandSpw("7")
	require.NoError(t, err)
	require.Equal(t, []string{"7"}, spws)

	spws, err = ExpandSpw("")
	require.NoError(t, err)
	require.Empty(t, spws)

	_, err = ExpandSpw("a~3")
	require.True(t, errors.Is(err, ErrInvalidRange))

	require.Equal(t, "1,3,4", JoinSpw([]string{"1", "3", "4"}))
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("485~510")
	require.NoError(t, err)
	require.Equal(t, Range{Start: 485, End: 510}, r)
	require.Equal(t, 26, r.Len())
	require.True(t, r.Contains(500))
	require.False(t, r.Contains(511))
	require.Equal(t, "485~510", r.String())

	r, err = ParseRange("12")
	require.NoError(t, err)
	require.Equal(t, "12", r.String())

	_, err = ParseRange("10~2")
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestGroupAntennas(t *testing.T) {
	ants := []string{"DA41", "DA42", "DA43", "DA44", "DA45"}

	groups := GroupAntennas(ants, "", 2)
	require.Equal(t, []string{"DA41,DA42", "DA43,DA44", "DA45"}, groups)

	groups = GroupAntennas(ants, "DA43", 3)
	require.Equal(t, []string{"DA43&DA41;DA43&DA42;DA43&DA44", "DA43&DA45"}, groups)

	// the input is left untouched
	require.Equal(t, "DA43", ants[2])

	require.Nil(t, GroupAntennas(ants, "", 0))
}

func TestBaseline(t *testing.T) {
	require.Equal(t, "DA41&DA42", Baseline("DA42", "DA41"))
	require.Equal(t, "DA41&DA42;DV01&DV02", JoinBaselines([]string{"DA41&DA42", "DV01&DV02"}))
}

func TestFlagCommand(t *testing.T) {
	cmd := NewFlagCommand("uid.ms").WithoutBackup()
	cmd.Antenna = "DA41&DA42;DA43&DV01"
	require.Equal(t,
		"flagdata(vis='uid.ms', mode='manual', antenna='DA41&DA42;DA43&DV01', flagbackup=False)",
		cmd.String())

	cmd = FlagCommand{
		Antenna:     "ea01&ea05",
		Correlation: "RR",
		Spw:         "2",
		Scan:        "14",
		TimeRange:   "2019/03/21/05:12:33.0",
	}
	require.Equal(t,
		"flagdata(vis='', mode='manual', antenna='ea01&ea05', correlation='RR', spw='2', scan='14', timerange='2019/03/21/05:12:33.0')",
		cmd.String())
}
