package view

// Carousel is a cursor over a listing's images. Navigation wraps at both ends.
type Carousel struct {
	images []string
	index  int
}

func NewCarousel(images []string) *Carousel {
	return &Carousel{images: append([]string(nil), images...)}
}

func (c *Carousel) Len() int { return len(c.images) }

func (c *Carousel) Index() int { return c.index }

// Current returns the selected image, false when there are none.
func (c *Carousel) Current() (string, bool) {
	if len(c.images) == 0 {
		return "", false
	}
	return c.images[c.index], true
}

func (c *Carousel) Next() {
	if len(c.images) == 0 {
		return
	}
	c.index = (c.index + 1) % len(c.images)
}

func (c *Carousel) Prev() {
	if len(c.images) == 0 {
		return
	}
	c.index = (c.index - 1 + len(c.images)) % len(c.images)
}

// Seek selects image i modulo the image count, so negative positions count from the end.
func (c *Carousel) Seek(i int) {
	n := len(c.images)
	if n == 0 {
		return
	}
	c.index = ((i % n) + n) % n
}

// Images returns a copy of the image URLs.
func (c *Carousel) Images() []string {
	return append([]string(nil), c.images...)
}
