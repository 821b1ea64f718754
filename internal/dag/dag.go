package dag

import "sort"

// Levels maps node ids to their level.
type Levels map[string]int

// Max returns the highest level, or 0 when there are no levels.
func (l Levels) Max() int {
	most := 0
	for _, v := range l {
		if v > most {
			most = v
		}
	}
	return most
}

type color int

const (
	unvisited color = iota
	visiting
	done
)

// AssignLevels computes the level of every node of g:
//
//	level(n) = 0                                 if n has no resolvable dependency
//	level(n) = 1 + max(level(d) for resolvable d) otherwise
//
// Dangling dependencies are ignored. The memo is local to the call. A cycle
// is reported as a *CycleError naming the closed path.
func AssignLevels(g *Graph) (Levels, error) {
	levels := make(Levels, len(g.Nodes))
	colors := make(map[string]color, len(g.Nodes))
	var path []string

	var visit func(id string) (int, error)
	visit = func(id string) (int, error) {
		switch colors[id] {
		case done:
			return levels[id], nil
		case visiting:
			return 0, &CycleError{Cycle: closePath(path, id)}
		}

		colors[id] = visiting
		path = append(path, id)

		level := 0
		for _, dep := range g.Nodes[id].DependsOn {
			if _, ok := g.Nodes[dep]; !ok {
				continue
			}
			depLevel, err := visit(dep)
			if err != nil {
				return 0, err
			}
			if depLevel+1 > level {
				level = depLevel + 1
			}
		}

		path = path[:len(path)-1]
		colors[id] = done
		levels[id] = level
		return level, nil
	}

	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if colors[id] == done {
			continue
		}
		if _, err := visit(id); err != nil {
			return nil, err
		}
	}
	return levels, nil
}

// closePath extracts the cycle that re-enters id from the current DFS path.
// Each entry depends on the next one.
func closePath(path []string, id string) []string {
	start := 0
	for i, p := range path {
		if p == id {
			start = i
			break
		}
	}
	cycle := append([]string(nil), path[start:]...)
	cycle = append(cycle, id)
	return cycle
}
