package model

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	CategoryDocuments = "documents"
	CategoryImages    = "images"
	CategoryVideos    = "videos"
	CategoryAudio     = "audio"
	CategoryOther     = "other"
)

const (
	KindFile   = "file"
	KindFolder = "folder"
)

// SourceIndividual labels nodes that sit at the root of their owner's tree.
const SourceIndividual = "uploaded individually"

// Node is a file or folder in an owner's tree. Folders carry no content;
// file bytes live in blob storage under the node ID.
type Node struct {
	ID               string    `db:"id" json:"id"`
	OwnerID          string    `db:"owner_id" json:"owner_id"`
	ParentID         *string   `db:"parent_id" json:"parent_id"`
	Name             string    `db:"name" json:"name"`
	IsFolder         bool      `db:"is_folder" json:"is_folder"`
	IsFavoriteFolder bool      `db:"is_favorite_folder" json:"is_favorite_folder"`
	Category         string    `db:"category" json:"category,omitempty"`
	Tags             string    `db:"tags" json:"tags"`
	Size             int64     `db:"size" json:"size"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

func (n *Node) Kind() string {
	if n.IsFolder {
		return KindFolder
	}
	return KindFile
}

// Ext returns the lowercased extension without the leading dot.
func (n *Node) Ext() string {
	return Ext(n.Name)
}

func (n *Node) IsRoot() bool {
	return n.ParentID == nil
}

// ParentKey returns the parent ID or "" for root nodes.
func (n *Node) ParentKey() string {
	if n.ParentID == nil {
		return ""
	}
	return *n.ParentID
}

// BlobKey is the storage key holding a file's content.
func (n *Node) BlobKey() string {
	return "nodes/" + n.OwnerID + "/" + n.ID
}

// NodeEntry is a node as presented in listings.
type NodeEntry struct {
	*Node
	Kind       string `json:"kind"`
	IsFavorite bool   `json:"is_favorite"`
	Source     string `json:"source"`
}

// FavoriteLink places a node inside a favorite folder without moving it.
type FavoriteLink struct {
	FileID    string    `db:"file_id" json:"file_id"`
	FolderID  string    `db:"folder_id" json:"folder_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func Ext(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
