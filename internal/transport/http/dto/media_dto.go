package dto

type ProfileImageResponse struct {
	ObjectKey string `json:"object_key"`
	URL       string `json:"url"`
}
