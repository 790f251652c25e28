package models

type SiteSettings struct {
	IsLocked bool `json:"is_locked"`
}

// SiteSettingsUpdate uses a pointer so a body without is_locked is rejected
// instead of silently unlocking the site.
type SiteSettingsUpdate struct {
	IsLocked *bool `json:"is_locked" validate:"required"`
}

type SiteSettingsUpdateResponse struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message"`
	Settings SiteSettings `json:"settings"`
}
