package api

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/rpupo63/blogpress/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	feedHandler   feedHandler
	blogHandler   blogHandler
	postHandler   postHandler
	authorHandler authorHandler
	tagHandler    tagHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"Internal Server Error"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

// PostDetail is a post joined with its author and tags
type PostDetail struct {
	Post   models.Post   `json:"post"`
	Author models.Author `json:"author"`
	Tags   []models.Tag  `json:"tags"`
}

type IndexResponse struct {
	Posts   []models.Post   `json:"posts"`
	Tags    []models.Tag    `json:"tags"`
	Authors []models.Author `json:"authors"`
}

type SearchResponse struct {
	Term        string        `json:"term"`
	Posts       []models.Post `json:"posts"`
	EmptySearch bool          `json:"emptySearch"`
}

type AuthorPage struct {
	Author models.Author `json:"author"`
	Posts  []models.Post `json:"posts"`
}

type TagPage struct {
	Tag   models.Tag    `json:"tag"`
	Posts []models.Post `json:"posts"`
}

var slugPattern = regexp.MustCompile(`^[\p{Ll}\p{Nd}]+(-[\p{Ll}\p{Nd}]+)*$`)

// PostRequest is the admin payload for creating or editing a post.
// An empty slug is derived from the title.
type PostRequest struct {
	Title     string   `json:"title"`
	Contents  string   `json:"contents"`
	Slug      string   `json:"slug"`
	Tags      []string `json:"tags"`
	Published bool     `json:"published"`
}

func (r PostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required.Error("title is required")),
		validation.Field(&r.Contents, validation.Required.Error("contents is required")),
		validation.Field(&r.Slug, validation.Match(slugPattern).Error("slug may only contain lowercase letters, digits and single hyphens")),
		validation.Field(&r.Tags, validation.Each(validation.Required.Error("tag names must not be empty"))),
	)
}

// CreateAuthorRequest is the admin payload for a new author
type CreateAuthorRequest struct {
	Name            string  `json:"name"`
	Username        string  `json:"username"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirmPassword"`
	ProfilePicture  *string `json:"profilePicture,omitempty"`
	TwitterHandle   *string `json:"twitterHandle,omitempty"`
	Biography       *string `json:"biography,omitempty"`
	Tagline         *string `json:"tagline,omitempty"`
}

func (r CreateAuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("name is required")),
		validation.Field(&r.Username,
			validation.Required.Error("username is required"),
			is.Alphanumeric.Error("username may only contain letters and numbers"),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.RuneLength(10, 0).Error("password must be at least 10 characters"),
		),
		validation.Field(&r.ConfirmPassword,
			validation.Required.Error("password confirmation is required"),
			validation.In(r.Password).Error("passwords do not match"),
		),
	)
}

// UpdateAuthorRequest edits an author. An empty password keeps the current one.
type UpdateAuthorRequest struct {
	Name                  string  `json:"name"`
	Username              string  `json:"username"`
	Password              string  `json:"password"`
	ConfirmPassword       string  `json:"confirmPassword"`
	ProfilePicture        *string `json:"profilePicture,omitempty"`
	TwitterHandle         *string `json:"twitterHandle,omitempty"`
	Biography             *string `json:"biography,omitempty"`
	Tagline               *string `json:"tagline,omitempty"`
	ResetPasswordRequired bool    `json:"resetPasswordRequired"`
}

func (r UpdateAuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("name is required")),
		validation.Field(&r.Username,
			validation.Required.Error("username is required"),
			is.Alphanumeric.Error("username may only contain letters and numbers"),
		),
		validation.Field(&r.Password,
			validation.When(r.Password != "", validation.RuneLength(10, 0).Error("password must be at least 10 characters")),
		),
		validation.Field(&r.ConfirmPassword,
			validation.When(r.Password != "",
				validation.Required.Error("password confirmation is required"),
				validation.In(r.Password).Error("passwords do not match"),
			),
		),
	)
}
