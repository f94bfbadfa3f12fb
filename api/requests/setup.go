package requests

type SetupRequest struct {
	NotionToken       string `json:"notion_token" form:"notion_token" validate:"required"`
	ParentPageLink    string `json:"parent_page_link" form:"parent_page_link" validate:"required"`
	UnsplashAccessKey string `json:"unsplash_access_key" form:"unsplash_access_key"`
}
