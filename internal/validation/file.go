package validation

import (
	"github.com/templui/filenest/internal/model"
)

// allowedExtensions lists the file types accepted for upload.
var allowedExtensions = map[string]bool{
	"txt": true, "pdf": true,
	"png": true, "jpg": true, "jpeg": true, "gif": true,
	"doc": true, "docx": true,
	"xls": true, "xlsx": true,
	"ppt": true, "pptx": true,
	"mp4": true, "avi": true, "mkv": true,
	"zip": true, "rar": true,
	"mp3": true,
}

var extensionCategories = map[string]string{
	"txt": model.CategoryDocuments, "pdf": model.CategoryDocuments,
	"doc": model.CategoryDocuments, "docx": model.CategoryDocuments,
	"xls": model.CategoryDocuments, "xlsx": model.CategoryDocuments,
	"ppt": model.CategoryDocuments, "pptx": model.CategoryDocuments,

	"png": model.CategoryImages, "jpg": model.CategoryImages,
	"jpeg": model.CategoryImages, "gif": model.CategoryImages,

	"mp4": model.CategoryVideos, "avi": model.CategoryVideos, "mkv": model.CategoryVideos,

	"mp3": model.CategoryAudio,
}

var mimeTypes = map[string]string{
	"txt":  "text/plain; charset=utf-8",
	"pdf":  "application/pdf",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"mp4":  "video/mp4",
	"avi":  "video/x-msvideo",
	"mkv":  "video/x-matroska",
	"mp3":  "audio/mpeg",
	"zip":  "application/zip",
	"rar":  "application/vnd.rar",
}

// convertibleExtensions are office formats previewed through PDF conversion.
var convertibleExtensions = map[string]bool{
	"doc": true, "docx": true,
	"xls": true, "xlsx": true,
	"ppt": true, "pptx": true,
}

// AllowedExtension reports whether ext (lowercase, no dot) may be uploaded.
func AllowedExtension(ext string) bool {
	return allowedExtensions[ext]
}

// Category derives a file category from its extension.
func Category(ext string) string {
	if c, ok := extensionCategories[ext]; ok {
		return c
	}
	return model.CategoryOther
}

func IsCategory(category string) bool {
	switch category {
	case model.CategoryDocuments, model.CategoryImages, model.CategoryVideos, model.CategoryAudio, model.CategoryOther:
		return true
	}
	return false
}

// MimeType returns the content type served for ext.
func MimeType(ext string) string {
	if m, ok := mimeTypes[ext]; ok {
		return m
	}
	return "application/octet-stream"
}

// Convertible reports whether ext is previewed via PDF conversion.
func Convertible(ext string) bool {
	return convertibleExtensions[ext]
}
