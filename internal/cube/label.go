package cube

import "math"

// LabelPlane labels the 4-connected structures of positive pixels in
// channel z. labels must hold Nx*Ny entries; background pixels get 0 and
// structures are numbered from 1. It returns the number of structures.
func (c *Cube) LabelPlane(z int, labels []int) int {
	plane := c.Plane(z)
	clear(labels)

	var n int
	var queue []int
	for start, v := range plane {
		if !(v > 0) || labels[start] != 0 {
			continue
		}

		n++
		labels[start] = n
		queue = append(queue[:0], start)

		for len(queue) > 0 {
			i := queue[len(queue)-1]
			queue = queue[:len(queue)-1]

			x, y := i%c.Nx, i/c.Nx
			for _, nb := range [4][2]int{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}} {
				if nb[0] < 0 || nb[0] >= c.Nx || nb[1] < 0 || nb[1] >= c.Ny {
					continue
				}

				j := nb[0] + nb[1]*c.Nx
				if labels[j] == 0 && plane[j] > 0 {
					labels[j] = n
					queue = append(queue, j)
				}
			}
		}
	}

	return n
}

// RemoveSmallStructures blanks every 4-connected structure of positive
// pixels smaller than minPixels, channel by channel. Structures never span
// channels. It returns the number of structures removed.
func (c *Cube) RemoveSmallStructures(minPixels int) int {
	labels := make([]int, c.Nx*c.Ny)

	var removed int
	for z := range c.Nz {
		n := c.LabelPlane(z, labels)
		if n == 0 {
			continue
		}

		sizes := make([]int, n+1)
		for _, l := range labels {
			sizes[l]++
		}

		plane := c.Plane(z)
		for i, l := range labels {
			if l != 0 && sizes[l] < minPixels {
				plane[i] = math.NaN()
			}
		}

		for l := 1; l <= n; l++ {
			if sizes[l] < minPixels {
				removed++
			}
		}
	}

	return removed
}
