package notice

// Position is a notice and its neighbours within an ordered feed.
type Position struct {
	Current  *Notice `json:"current"`
	Previous *Notice `json:"previous"`
	Next     *Notice `json:"next"`
}

func (p Position) Found() bool {
	return p.Current != nil
}

// Locate finds id in feed. When id is absent every field is nil.
func Locate(feed []Notice, id string) Position {
	for i := range feed {
		if feed[i].ID != id {
			continue
		}
		pos := Position{Current: &feed[i]}
		if i > 0 {
			pos.Previous = &feed[i-1]
		}
		if i < len(feed)-1 {
			pos.Next = &feed[i+1]
		}
		return pos
	}
	return Position{}
}
