package face

import "math"

// Group merges raw detector windows into confirmed faces. Windows whose
// corners lie within eps of each other (relative to their size) end up in the
// same cluster; clusters with fewer than minNeighbors windows are dropped, and
// each surviving cluster is reported as its average box. A face box lying
// inside a better supported one is dropped as well.
func Group(windows []Region, minNeighbors int, eps float64) []Region {
	if len(windows) == 0 {
		return nil
	}

	labels := partition(windows, eps)

	type cluster struct {
		sx, sy, sw, sh, n int
	}
	var order []int
	clusters := make(map[int]*cluster)
	for i, w := range windows {
		c, ok := clusters[labels[i]]
		if !ok {
			c = &cluster{}
			clusters[labels[i]] = c
			order = append(order, labels[i])
		}
		c.sx += w.X
		c.sy += w.Y
		c.sw += w.W
		c.sh += w.H
		c.n++
	}

	var boxes []Region
	var support []int
	for _, label := range order {
		c := clusters[label]
		if c.n < minNeighbors {
			continue
		}
		boxes = append(boxes, Region{
			X: divRound(c.sx, c.n),
			Y: divRound(c.sy, c.n),
			W: divRound(c.sw, c.n),
			H: divRound(c.sh, c.n),
		})
		support = append(support, c.n)
	}

	var out []Region
	for i, r := range boxes {
		nested := false
		for j, outer := range boxes {
			if i == j || support[j] <= support[i] {
				continue
			}
			if inside(r, outer, eps) {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, r)
		}
	}
	return out
}

// partition labels windows by connected components of the similarity graph.
func partition(windows []Region, eps float64) []int {
	parent := make([]int, len(windows))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	for i := range windows {
		for j := i + 1; j < len(windows); j++ {
			if similar(windows[i], windows[j], eps) {
				ri, rj := find(i), find(j)
				if ri != rj {
					parent[max(ri, rj)] = min(ri, rj)
				}
			}
		}
	}

	labels := make([]int, len(windows))
	for i := range windows {
		labels[i] = find(i)
	}
	return labels
}

func similar(a, b Region, eps float64) bool {
	delta := eps * float64(min(a.W, b.W)+min(a.H, b.H)) * 0.5
	return math.Abs(float64(a.X-b.X)) <= delta &&
		math.Abs(float64(a.Y-b.Y)) <= delta &&
		math.Abs(float64(a.X+a.W-b.X-b.W)) <= delta &&
		math.Abs(float64(a.Y+a.H-b.Y-b.H)) <= delta
}

// inside reports whether r fits in outer grown by eps of its size on each side.
func inside(r, outer Region, eps float64) bool {
	dx := int(math.Round(float64(outer.W) * eps))
	dy := int(math.Round(float64(outer.H) * eps))
	return r.X >= outer.X-dx &&
		r.Y >= outer.Y-dy &&
		r.X+r.W <= outer.X+outer.W+dx &&
		r.Y+r.H <= outer.Y+outer.H+dy
}

func divRound(sum, n int) int {
	return int(math.Round(float64(sum) / float64(n)))
}
