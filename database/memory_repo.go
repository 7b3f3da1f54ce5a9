package database

import (
	"context"
	"strings"
	"sync"

	"github.com/rpupo63/blogpress/errs"
	"github.com/rpupo63/blogpress/models"
)

// MemoryRepository keeps all content in process memory. Every method holds
// the lock for its whole duration, so each call is atomic.
type MemoryRepository struct {
	mu     sync.RWMutex
	policy SearchPolicy

	posts   []models.Post
	authors []models.Author
	tags    []models.Tag
	links   []models.PostTagLink

	nextPostID   uint
	nextAuthorID uint
	nextTagID    uint
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository(policy SearchPolicy) *MemoryRepository {
	return &MemoryRepository{
		policy:       policy,
		nextPostID:   1,
		nextAuthorID: 1,
		nextTagID:    1,
	}
}

// Posts

func (r *MemoryRepository) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.copyPosts(func(models.Post) bool { return true }), nil
}

func (r *MemoryRepository) GetAllPostsSortedByPublishDate(ctx context.Context, includeDrafts bool) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	posts := r.copyPosts(func(p models.Post) bool { return includeDrafts || p.Published })
	sortByPublishDate(posts)
	return posts, nil
}

func (r *MemoryRepository) GetPostsForAuthor(ctx context.Context, authorID uint, includeDrafts bool) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	posts := r.copyPosts(func(p models.Post) bool {
		return p.AuthorID == authorID && (includeDrafts || p.Published)
	})
	sortByPublishDate(posts)
	return posts, nil
}

func (r *MemoryRepository) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, post := range r.posts {
		if post.Slug == slug {
			found := post.Clone()
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.postIndex(id); i >= 0 {
		found := r.posts[i].Clone()
		return &found, nil
	}
	return nil, nil
}

func (r *MemoryRepository) GetPostsForTag(ctx context.Context, tagID uint) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tagged := make(map[uint]bool)
	for _, link := range r.links {
		if link.TagID == tagID {
			tagged[link.PostID] = true
		}
	}
	posts := r.copyPosts(func(p models.Post) bool { return p.Published && tagged[p.ID] })
	sortByPublishDate(posts)
	return posts, nil
}

func (r *MemoryRepository) SearchPublishedPosts(ctx context.Context, term string) ([]models.Post, error) {
	if strings.TrimSpace(term) == "" {
		return []models.Post{}, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	posts := r.copyPosts(func(p models.Post) bool { return p.Published && r.policy.Matches(p, term) })
	sortByPublishDate(posts)
	return posts, nil
}

func (r *MemoryRepository) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	if err := validatePost(post); err != nil {
		return models.Post{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slugTaken(post.Slug, 0) {
		return models.Post{}, errs.NewUniqueConstraintViolationError("post", "slug", nil)
	}
	post = post.Clone()
	post.ID = r.nextPostID
	r.nextPostID++
	r.posts = append(r.posts, post)
	return post.Clone(), nil
}

func (r *MemoryRepository) UpdatePost(ctx context.Context, post models.Post) error {
	if err := validatePost(post); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.postIndex(post.ID)
	if i < 0 {
		return errs.NewNotFound("post")
	}
	if r.slugTaken(post.Slug, post.ID) {
		return errs.NewUniqueConstraintViolationError("post", "slug", nil)
	}
	r.posts[i] = post.Clone()
	return nil
}

func (r *MemoryRepository) DeletePost(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.postIndex(id)
	if i < 0 {
		return errs.NewNotFound("post")
	}
	r.posts = append(r.posts[:i], r.posts[i+1:]...)
	r.removeLinks(func(link models.PostTagLink) bool { return link.PostID == id })
	return nil
}

// Authors

func (r *MemoryRepository) GetAllAuthors(ctx context.Context) ([]models.Author, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	authors := make([]models.Author, 0, len(r.authors))
	for _, author := range r.authors {
		authors = append(authors, author.Clone())
	}
	return authors, nil
}

func (r *MemoryRepository) GetAuthorByID(ctx context.Context, id uint) (*models.Author, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.authorIndex(id); i >= 0 {
		found := r.authors[i].Clone()
		return &found, nil
	}
	return nil, nil
}

func (r *MemoryRepository) GetAuthorByUsername(ctx context.Context, username string) (*models.Author, error) {
	username = models.NormalizeUsername(username)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, author := range r.authors {
		if author.Username == username {
			found := author.Clone()
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) CreateAuthor(ctx context.Context, author models.Author) (models.Author, error) {
	author = author.Clone()
	author.Username = models.NormalizeUsername(author.Username)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usernameTaken(author.Username, 0) {
		return models.Author{}, errs.NewUniqueConstraintViolationError("author", "username", nil)
	}
	author.ID = r.nextAuthorID
	r.nextAuthorID++
	r.authors = append(r.authors, author)
	return author.Clone(), nil
}

func (r *MemoryRepository) UpdateAuthor(ctx context.Context, author models.Author) error {
	author = author.Clone()
	author.Username = models.NormalizeUsername(author.Username)
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.authorIndex(author.ID)
	if i < 0 {
		return errs.NewNotFound("author")
	}
	if r.usernameTaken(author.Username, author.ID) {
		return errs.NewUniqueConstraintViolationError("author", "username", nil)
	}
	r.authors[i] = author
	return nil
}

func (r *MemoryRepository) DeleteAuthor(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.authorIndex(id)
	if i < 0 {
		return errs.NewNotFound("author")
	}
	r.authors = append(r.authors[:i], r.authors[i+1:]...)
	return nil
}

func (r *MemoryRepository) CountAuthors(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.authors)), nil
}

// Tags

func (r *MemoryRepository) GetAllTags(ctx context.Context) ([]models.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Tag{}, r.tags...), nil
}

func (r *MemoryRepository) GetTagByName(ctx context.Context, name string) (*models.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, tag := range r.tags {
		if tag.Name == name {
			found := tag
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) GetOrCreateTag(ctx context.Context, name string) (models.Tag, error) {
	if strings.TrimSpace(name) == "" {
		return models.Tag{}, errs.NewMissingRequiredFieldError("name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tag := range r.tags {
		if tag.Name == name {
			return tag, nil
		}
	}
	tag := models.Tag{ID: r.nextTagID, Name: name}
	r.nextTagID++
	r.tags = append(r.tags, tag)
	return tag, nil
}

func (r *MemoryRepository) GetTagsForPost(ctx context.Context, postID uint) ([]models.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := []models.Tag{}
	for _, link := range r.links {
		if link.PostID != postID {
			continue
		}
		if i := r.tagIndex(link.TagID); i >= 0 {
			tags = append(tags, r.tags[i])
		}
	}
	return tags, nil
}

func (r *MemoryRepository) LinkTag(ctx context.Context, tagID, postID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tagIndex(tagID) < 0 {
		return errs.NewReferentialIntegrityError("post tag link", "tag", tagID)
	}
	if r.postIndex(postID) < 0 {
		return errs.NewReferentialIntegrityError("post tag link", "post", postID)
	}
	for _, link := range r.links {
		if link.TagID == tagID && link.PostID == postID {
			return nil
		}
	}
	r.links = append(r.links, models.PostTagLink{PostID: postID, TagID: tagID})
	return nil
}

func (r *MemoryRepository) UnlinkTag(ctx context.Context, tagID, postID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLinks(func(link models.PostTagLink) bool {
		return link.TagID == tagID && link.PostID == postID
	})
	return nil
}

func (r *MemoryRepository) DeleteTag(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.tagIndex(id)
	if i < 0 {
		return errs.NewNotFound("tag")
	}
	r.tags = append(r.tags[:i], r.tags[i+1:]...)
	r.removeLinks(func(link models.PostTagLink) bool { return link.TagID == id })
	return nil
}

// helpers; callers hold the lock

func (r *MemoryRepository) copyPosts(keep func(models.Post) bool) []models.Post {
	posts := []models.Post{}
	for _, post := range r.posts {
		if keep(post) {
			posts = append(posts, post.Clone())
		}
	}
	return posts
}

func (r *MemoryRepository) postIndex(id uint) int {
	for i, post := range r.posts {
		if post.ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryRepository) authorIndex(id uint) int {
	for i, author := range r.authors {
		if author.ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryRepository) tagIndex(id uint) int {
	for i, tag := range r.tags {
		if tag.ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryRepository) slugTaken(slug string, exceptID uint) bool {
	for _, post := range r.posts {
		if post.Slug == slug && post.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) usernameTaken(username string, exceptID uint) bool {
	for _, author := range r.authors {
		if author.Username == username && author.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) removeLinks(drop func(models.PostTagLink) bool) {
	kept := r.links[:0]
	for _, link := range r.links {
		if !drop(link) {
			kept = append(kept, link)
		}
	}
	r.links = kept
}
