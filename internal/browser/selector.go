package browser

// Selector addresses an element by CSS or by XPath. XPath wins when both are set.
type Selector struct {
	CSS   string
	XPath string
}

func CSS(s string) Selector   { return Selector{CSS: s} }
func XPath(s string) Selector { return Selector{XPath: s} }

func (s Selector) String() string {
	if s.XPath != "" {
		return "xpath:" + s.XPath
	}
	return "css:" + s.CSS
}
