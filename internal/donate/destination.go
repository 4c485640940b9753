package donate

import "strings"

// Destination identifies where the user is sent to make a donation.
type Destination string

const (
	GiveWell Destination = "givewell"
	AMF      Destination = "amf"
	Trussell Destination = "trussell"
	GovGuide Destination = "govGuide"
)

// Default is the destination preselected in the donate dialog.
const Default = GiveWell

// Info describes a destination for presentation.
type Info struct {
	Tag  Destination `json:"tag"`
	Name string      `json:"name"`
	URL  string      `json:"url"`
}

// All lists every destination in display order.
func All() []Info {
	out := make([]Info, 0, 4)
	for _, d := range []Destination{GiveWell, AMF, Trussell, GovGuide} {
		out = append(out, Info{Tag: d, Name: d.Name(), URL: d.URL()})
	}
	return out
}

// Parse maps a tag to a destination. Unknown tags fall back to GovGuide.
func Parse(tag string) Destination {
	trimmed := strings.TrimSpace(tag)
	for _, d := range []Destination{GiveWell, AMF, Trussell, GovGuide} {
		if strings.EqualFold(trimmed, string(d)) {
			return d
		}
	}
	return GovGuide
}

// URL returns the donation page for d.
func (d Destination) URL() string {
	switch d {
	case GiveWell:
		return "https://www.givewell.org/donate"
	case AMF:
		return "https://www.againstmalaria.com/donate.aspx"
	case Trussell:
		return "https://www.trusselltrust.org/make-a-donation/"
	default:
		return "https://www.gov.uk/"
	}
}

// Name is the human readable label for d.
func (d Destination) Name() string {
	switch d {
	case GiveWell:
		return "GiveWell"
	case AMF:
		return "Against Malaria Foundation"
	case Trussell:
		return "Trussell Trust"
	default:
		return "UK government services"
	}
}
