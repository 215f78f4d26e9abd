package tabhost

import "time"

// statusDuration is how long a transient status message stays up before the
// summary line replaces it.
const statusDuration = 5 * time.Second

// Host palette as 0xRRGGBB pixel values.
const (
	colorBarBg       = 0x1e1e1e
	colorTabIdle     = 0x2d2d2d
	colorTabSelected = 0x44607a
	colorTabError    = 0x6e3a3a
	colorText        = 0xdcdcdc
	colorTextDim     = 0x8a8a8a
	colorContentBg   = 0x232323
	colorStatusBg    = 0x161616
)

// Both renderers budget labels assuming roughly 6px per character.
const fontCharWidth = 6
