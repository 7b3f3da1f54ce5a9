package feed

const (
	DefaultTitle    = "Blogpress Blog"
	DefaultSubtitle = "Blogpress is an open-source blogging engine written in Go"

	generatorName = "Blogpress"
	generatorURI  = "https://github.com/rpupo63/blogpress"
)

// Config holds the feed options. Rights and LogoURL are omitted from the
// document when empty.
type Config struct {
	Title             string
	Subtitle          string
	Rights            string
	LogoURL           string
	MountPath         string
	IncludeCategories bool
}

func (c Config) title() string {
	if c.Title == "" {
		return DefaultTitle
	}
	return c.Title
}

func (c Config) subtitle() string {
	if c.Subtitle == "" {
		return DefaultSubtitle
	}
	return c.Subtitle
}
