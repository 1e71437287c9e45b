package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lecturequiz/internal/llm"
	"lecturequiz/internal/models"
	"lecturequiz/internal/prompt"
)

type choice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type bounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// OptionsResponse describes the settings form.
type OptionsResponse struct {
	Difficulties []choice       `json:"difficulties"`
	Kinds        []choice       `json:"kinds"`
	Models       []llm.Model    `json:"models"`
	Count        bounds         `json:"count"`
	Alternatives bounds         `json:"alternatives"`
	Defaults     prompt.Options `json:"defaults"`
	Sources      sources        `json:"sources"`
}

type sources struct {
	Files     bool `json:"files"`
	ObjectKey bool `json:"object_key"`
	VideoURL  bool `json:"video_url"`
}

// HandleOptions lists what a generate request may ask for.
func (h *Handler) HandleOptions(c *gin.Context) {
	resp := OptionsResponse{
		Models:       h.Models,
		Count:        bounds{Min: prompt.MinCount, Max: prompt.MaxCount},
		Alternatives: bounds{Min: prompt.MinAlternatives, Max: prompt.MaxAlternatives},
		Defaults:     prompt.DefaultOptions(),
		Sources:      sources{Files: true, ObjectKey: h.Objects != nil, VideoURL: h.Videos != nil},
	}
	resp.Defaults.Model = h.DefaultModel
	for _, d := range models.Difficulties {
		resp.Difficulties = append(resp.Difficulties, choice{ID: string(d), Label: d.Label()})
	}
	for _, k := range models.Kinds {
		resp.Kinds = append(resp.Kinds, choice{ID: string(k), Label: k.Label()})
	}
	c.JSON(http.StatusOK, resp)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
