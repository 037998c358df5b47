package api

import (
	"github.com/starford/modeler/internal/annotation"
	"github.com/starford/modeler/internal/modeler"
)

// GroupDetail is the full group response type (aliased from the domain layer).
type GroupDetail = modeler.GroupDetail

// GroupListItem is a lightweight item in a list response (aliased from the domain layer).
type GroupListItem = modeler.GroupListItem

// GroupListResponse wraps group listings.
type GroupListResponse struct {
	Groups []GroupListItem `json:"groups" validate:"required"`
	Total  int             `json:"total" example:"3" validate:"required"`
}

// ConnectionResponse is returned after a connection is stored.
type ConnectionResponse struct {
	Ref string `json:"ref" example:"5b1f6e0c-8d7a-5c1e-9f0b-2a3d4e5f6a7b" validate:"required"`
}

// BuildRequest is the request body for building a model.
type BuildRequest = modeler.BuildRequest

// BuildResult is the model build response type.
type BuildResult = modeler.BuildResult

// AnnotationKind describes one annotation variant for editors.
type AnnotationKind struct {
	Kind       annotation.Kind       `json:"kind" example:"CREATE_ATTRIBUTE" validate:"required"`
	Properties []annotation.Property `json:"properties" validate:"required"`
}

// AnnotationKindsResponse lists every annotation variant.
type AnnotationKindsResponse struct {
	Kinds []AnnotationKind `json:"kinds" validate:"required"`
}
