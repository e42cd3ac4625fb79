package imagegen

import (
	"math/rand"

	"organquiz/internal/config"
)

const taskTextToImage = "TEXT_IMAGE"

// Request is the Titan image generator's native wire format. Immutable once
// built and never reused across calls: a fresh seed per request keeps two
// rounds from producing identical images.
type Request struct {
	TaskType              string            `json:"taskType"`
	TextToImageParams     TextToImageParams `json:"textToImageParams"`
	ImageGenerationConfig GenerationConfig  `json:"imageGenerationConfig"`
}

type TextToImageParams struct {
	Text string `json:"text"`
}

type GenerationConfig struct {
	NumberOfImages int     `json:"numberOfImages"`
	Quality        string  `json:"quality"`
	CfgScale       float64 `json:"cfgScale"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	Seed           int32   `json:"seed"`
}

// Builder turns prompt text into generation requests. It holds only the
// fixed tuning values from config and draws a new seed per call, so it is
// safe for concurrent use without synchronization.
type Builder struct {
	quality  string
	cfgScale float64
	width    int
	height   int
}

func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		quality:  cfg.ImageQuality,
		cfgScale: cfg.GuidanceScale,
		width:    cfg.ImageWidth,
		height:   cfg.ImageHeight,
	}
}

// Build returns a single-image request for the prompt with a seed drawn
// independently in [0, 2^31-1].
func (b *Builder) Build(prompt string) Request {
	return Request{
		TaskType:          taskTextToImage,
		TextToImageParams: TextToImageParams{Text: prompt},
		ImageGenerationConfig: GenerationConfig{
			NumberOfImages: 1,
			Quality:        b.quality,
			CfgScale:       b.cfgScale,
			Height:         b.height,
			Width:          b.width,
			Seed:           rand.Int31(),
		},
	}
}
