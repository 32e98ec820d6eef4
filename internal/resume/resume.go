package resume

// RawDocument is the output of text acquisition for one uploaded file.
type RawDocument struct {
	Text  string   // Plain text, may be empty
	Links []string // Absolute URIs, deduplicated, trailing slash stripped
	Image []byte   // First embedded raster image, nil if none
}

// Heading marks the start of a logical section.
type Heading struct {
	Position int    // Index into the segmented line slice
	Text     string // Original line text
	Key      string // Vocabulary key or derived key
}

// Contact holds recognized contact fields. Empty string means absent.
type Contact struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
}

// ExperienceFields and EducationFields are the declared per-entry fields.
// Every entry map in a normalized record carries exactly these keys.
var (
	ExperienceFields = []string{"company", "position", "location", "start_date", "end_date", "details"}
	EducationFields  = []string{"degree", "institution", "location", "start_date", "end_date", "details"}
)

// Sections is the nested section block of the canonical record.
type Sections struct {
	AboutMe    string              `json:"about_me"`
	Education  []map[string]string `json:"education"`
	Experience []map[string]string `json:"experience"`
	Skills     map[string][]string `json:"skills"`
	References string              `json:"references"`
	Misc       map[string][]string `json:"misc"`
}

// Record is the canonical structured resume handed to rendering.
type Record struct {
	FullName   string   `json:"full_name"`
	CurrentJob string   `json:"current_job"`
	Contact    Contact  `json:"contact"`
	Image      []byte   `json:"image"`
	Sections   Sections `json:"sections"`
}

// NewRecord returns a record with every collection initialized.
func NewRecord() Record {
	return Record{
		Sections: Sections{
			Education:  []map[string]string{},
			Experience: []map[string]string{},
			Skills:     map[string][]string{},
			Misc:       map[string][]string{},
		},
	}
}

// Plan describes how the employment history was split across pages.
// Overflow is set when the first page spills onto a second page even with
// the chosen prefix. Monotonic is only meaningful when Verified: every
// prefix was rendered and page counts never decreased as jobs were added.
type Plan struct {
	Fitting   int  `json:"fitting_count"`
	Total     int  `json:"total"`
	Probes    int  `json:"probes"`
	Overflow  bool `json:"overflow"`
	Verified  bool `json:"verified"`
	Monotonic bool `json:"monotonic"`
}
