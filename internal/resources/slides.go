package resources

import (
	"image-browser/internal/locator"
	"image-browser/internal/media"
)

// BlankImage is shown for slides whose locator is not resident yet.
const BlankImage = "data:image/gif;base64,R0lGODlhAQABAIAAAAAAAP///ywAAAAAAQABAAACAUwAOw=="

// Slide is one viewer entry. Unprobed images carry media.UnknownDimensions.
type Slide struct {
	ID     media.ID `json:"id"`
	Src    string   `json:"src"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Alt    string   `json:"alt"`
}

// Slides pairs images with their resident viewer locators.
func Slides(images []*media.ImageDescriptor, urls map[media.ID]locator.Locator) []Slide {
	slides := make([]Slide, len(images))
	for i, img := range images {
		src := BlankImage
		if l, ok := urls[img.ID]; ok {
			src = string(l)
		}
		dims := img.Dimensions()
		slides[i] = Slide{ID: img.ID, Src: src, Width: dims.Width, Height: dims.Height, Alt: img.Name}
	}
	return slides
}
