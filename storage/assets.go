// Package storage abstracts the asset host holding product images, payment
// slips and profile pictures. Uploads return a public URL plus an opaque file
// id; deletion takes the file id.
package storage

import "mime/multipart"

type Asset struct {
	URL    string `json:"url"`
	FileID string `json:"file_id"`
}

type AssetStore interface {
	Upload(file *multipart.FileHeader, label string) (Asset, error)
	Delete(fileID string) error
}
