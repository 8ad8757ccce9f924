package domain

// SiteRequest describes one site to parse: the listing page URL and the
// per-site map of field name to selector expression.
type SiteRequest struct {
	SiteURL   string            `json:"site_url"`
	Selectors map[string]string `json:"selectors"`
}

// Listing holds the fields extracted for a single real-estate object.
// All scalar fields default to the empty string; Photos is never nil so it
// serializes as a JSON array.
type Listing struct {
	SiteURL     string   `json:"site_url"`
	ObjectURL   string   `json:"object_url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Price       string   `json:"price"`
	Rooms       string   `json:"rooms"`
	Floor       string   `json:"floor"`
	Area        string   `json:"area"`
	Photos      []string `json:"photos"`
}

// ScalarFields are the listing fields extracted with a single-value selector,
// in output order. object_url and photos have dedicated handling.
var ScalarFields = []string{"title", "description", "address", "price", "rooms", "floor", "area"}

// NewListing returns an empty listing bound to its source site.
func NewListing(siteURL string) Listing {
	return Listing{
		SiteURL: siteURL,
		Photos:  []string{},
	}
}

// SetField assigns a scalar field by its selector-map name. Unknown names are
// ignored, matching the selector map contract where extra keys carry no meaning.
func (l *Listing) SetField(name, value string) {
	switch name {
	case "title":
		l.Title = value
	case "description":
		l.Description = value
	case "address":
		l.Address = value
	case "price":
		l.Price = value
	case "rooms":
		l.Rooms = value
	case "floor":
		l.Floor = value
	case "area":
		l.Area = value
	}
}
