package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/crestwm/crest/internal/client"
	"github.com/crestwm/crest/internal/layout"
)

// Monitors discovers the active display regions via RandR. Each
// monitor starts on its own workspace. When RandR reports nothing
// useful the root window geometry stands in as a single monitor.
func (c *Conn) Monitors() ([]client.Monitor, error) {
	monitors, err := c.randrMonitors()
	if err != nil || len(monitors) == 0 {
		c.logger.Debug("randr discovery unavailable, using root geometry", "error", err)
		root, rootErr := c.WindowGeometry(c.root)
		if rootErr != nil {
			return nil, fmt.Errorf("monitor discovery: %w", rootErr)
		}
		return []client.Monitor{{ID: 0, Name: "root", Geom: root}}, nil
	}
	return monitors, nil
}

func (c *Conn) randrMonitors() ([]client.Monitor, error) {
	if err := randr.Init(c.xu.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.xu.Conn(), c.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []client.Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.xu.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("monitor%d", i)
		if outputInfo, err := randr.GetOutputInfo(c.xu.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(outputInfo.Name)
		}

		monitors = append(monitors, client.Monitor{
			ID:   len(monitors),
			Name: name,
			Geom: layout.Rect{
				X:      int(crtcInfo.X),
				Y:      int(crtcInfo.Y),
				Width:  int(crtcInfo.Width),
				Height: int(crtcInfo.Height),
			},
			ActiveWorkspace: len(monitors),
		})
	}
	return monitors, nil
}

// PointerMonitor returns the id of the monitor under the pointer, or
// the first monitor when the query fails.
func (c *Conn) PointerMonitor(monitors []client.Monitor) int {
	pointer, err := xproto.QueryPointer(c.xu.Conn(), c.root).Reply()
	if err != nil {
		return 0
	}
	x, y := int(pointer.RootX), int(pointer.RootY)
	for _, mon := range monitors {
		g := mon.Geom
		if x >= g.X && x < g.X+g.Width && y >= g.Y && y < g.Y+g.Height {
			return mon.ID
		}
	}
	return 0
}
