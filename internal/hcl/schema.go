package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level block of a workspace file. Attributes are
// pointers so that an omitted attribute leaves the base value untouched.
type fileRoot struct {
	Planner  *plannerBlock  `hcl:"planner,block"`
	Watch    *watchBlock    `hcl:"watch,block"`
	Layout   *layoutBlock   `hcl:"layout,block"`
	Renderer *rendererBlock `hcl:"renderer,block"`
	Remain   hcl.Body       `hcl:",remain"`
}

type plannerBlock struct {
	Command      *string           `hcl:"command,optional"`
	IgnoreFields *[]string         `hcl:"ignore_fields,optional"`
	MinVersion   *string           `hcl:"min_version,optional"`
	Env          map[string]string `hcl:"env,optional"`
}

type watchBlock struct {
	Interval  *string `hcl:"interval,optional"`
	MaxCycles *int    `hcl:"max_cycles,optional"`
	Immediate *bool   `hcl:"immediate,optional"`
}

type layoutBlock struct {
	SpanX        *float64 `hcl:"span_x,optional"`
	CanvasHeight *float64 `hcl:"canvas_height,optional"`
	OffsetX      *float64 `hcl:"offset_x,optional"`
	OffsetY      *float64 `hcl:"offset_y,optional"`
}

type rendererBlock struct {
	Listen      *string `hcl:"listen,optional"`
	URL         *string `hcl:"url,optional"`
	ExitOnClose *bool   `hcl:"exit_on_close,optional"`
}
