package domain

import "time"

// Profile is a gallery entity: a person with metadata, category tags, and
// uploaded media. Profiles are created from the admin panel and have no
// delete path.
type Profile struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CoverImage  string    `json:"cover_image,omitempty"` // path of the first accepted image
	CreatedAt   time.Time `json:"created_at"`
	Featured    bool      `json:"featured"`
}

// HasCover reports whether a cover image has been assigned.
func (p *Profile) HasCover() bool {
	return p.CoverImage != ""
}

// ProfileSummary is a profile row shaped for listings: the profile itself
// plus aggregated category annotations and a media count.
type ProfileSummary struct {
	Profile
	CategoryNames string `json:"category_names"` // comma-joined, order unspecified
	CategorySlugs string `json:"category_slugs"`
	MediaCount    int    `json:"media_count"`
}

// ProfileDetail is a profile shaped for the detail page: aggregated
// category names, the full media list oldest-first, and the id used for
// circular "next" navigation.
type ProfileDetail struct {
	Profile
	CategoryNames string   `json:"category_names"`
	Media         []*Media `json:"media"`
	NextProfileID int64    `json:"next_profile_id"`
}
