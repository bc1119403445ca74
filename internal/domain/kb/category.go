package kb

import (
	"fmt"
	"strings"
	"time"

	"github.com/openhelpdesk/helpdesk/internal/shared/biztime"
	"github.com/openhelpdesk/helpdesk/internal/shared/constants"
	"github.com/openhelpdesk/helpdesk/internal/shared/utils"
)

// Category groups KB items. public gates anonymous access on its own,
// independent of ticket visibility.
type Category struct {
	id          uint
	name        string
	title       string
	slug        string
	description string
	queueID     *uint
	public      bool
	createdAt   time.Time
	updatedAt   time.Time
}

type CategorySettings struct {
	Name        string
	Title       string
	Slug        string
	Description string
	QueueID     *uint
	Public      bool
}

// NewCategory generates the slug from the name when none is given.
func NewCategory(s CategorySettings) (*Category, error) {
	c := &Category{}
	if err := c.apply(s); err != nil {
		return nil, err
	}
	now := biztime.NowUTC()
	c.createdAt = now
	c.updatedAt = now
	return c, nil
}

func ReconstructCategory(id uint, s CategorySettings, createdAt, updatedAt time.Time) (*Category, error) {
	if id == 0 {
		return nil, fmt.Errorf("category ID cannot be zero")
	}
	return &Category{
		id:          id,
		name:        s.Name,
		title:       s.Title,
		slug:        s.Slug,
		description: s.Description,
		queueID:     s.QueueID,
		public:      s.Public,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

func (c *Category) Update(s CategorySettings) error {
	if err := c.apply(s); err != nil {
		return err
	}
	c.updatedAt = biztime.NowUTC()
	return nil
}

func (c *Category) apply(s CategorySettings) error {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > 100 {
		return fmt.Errorf("name exceeds maximum length of 100 characters")
	}
	title := strings.TrimSpace(s.Title)
	if title == "" {
		title = name
	}
	slug := utils.Slugify(s.Slug, constants.SlugMaxLen)
	if slug == "" {
		slug = utils.Slugify(name, constants.SlugMaxLen)
	}
	if slug == "" {
		return fmt.Errorf("slug cannot be derived from name %q", name)
	}
	c.name = name
	c.title = title
	c.slug = slug
	c.description = s.Description
	c.queueID = s.QueueID
	c.public = s.Public
	return nil
}

func (c *Category) ID() uint {
	return c.id
}

func (c *Category) Name() string {
	return c.name
}

func (c *Category) Title() string {
	return c.title
}

func (c *Category) Slug() string {
	return c.slug
}

func (c *Category) Description() string {
	return c.description
}

func (c *Category) QueueID() *uint {
	return c.queueID
}

func (c *Category) IsPublic() bool {
	return c.public
}

func (c *Category) CreatedAt() time.Time {
	return c.createdAt
}

func (c *Category) UpdatedAt() time.Time {
	return c.updatedAt
}

func (c *Category) Settings() CategorySettings {
	return CategorySettings{
		Name:        c.name,
		Title:       c.title,
		Slug:        c.slug,
		Description: c.description,
		QueueID:     c.queueID,
		Public:      c.public,
	}
}

func (c *Category) SetID(id uint) error {
	if c.id != 0 {
		return fmt.Errorf("category ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("category ID cannot be zero")
	}
	c.id = id
	return nil
}
