package sidebar

// View is a rendered snapshot of the problem list. Index is the position
// at render time; it must be read again after every Delete.
type View struct {
	Visible bool       `json:"visible"`
	Items   []ViewItem `json:"items"`
	Notice  string     `json:"notice,omitempty"`
}

type ViewItem struct {
	Index   int    `json:"index"`
	ID      string `json:"id"`
	Display string `json:"display"`
}

func (c *Controller) renderLocked() View {
	items := make([]ViewItem, len(c.problems))
	for i, p := range c.problems {
		items[i] = ViewItem{Index: i, ID: p.ID, Display: p.Display}
	}
	return View{
		Visible: len(items) > 0,
		Items:   items,
		Notice:  c.notice,
	}
}
