package config

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/taigrr/painter/pkg/math3d"
	"github.com/taigrr/painter/pkg/models"
	"github.com/taigrr/painter/pkg/render"
	"github.com/taigrr/painter/pkg/subdiv"
)

// Build loads every mesh, subdivides it and assembles the scene. Meshes are
// added in file order. A nil logger discards subdivision warnings.
func (c *Config) Build(ctx context.Context, logger *log.Logger) (*render.Scene, error) {
	scene := render.NewScene()
	engine := &subdiv.Engine{Strict: c.Strict, Logger: logger}

	for i, mc := range c.Meshes {
		packet, err := models.Load(ctx, mc.Source)
		if err != nil {
			return nil, fmt.Errorf("mesh[%d] %q: %w", i, mc.Source, err)
		}
		if mc.Fit > 0 {
			packet.Fit(mc.Fit)
		}

		packet, err = engine.SubdivideN(ctx, packet, mc.Subdivisions)
		if err != nil {
			return nil, fmt.Errorf("mesh[%d] %q: %w", i, mc.Source, err)
		}

		if mc.Color != "" {
			if err := recolor(packet, mc.Color); err != nil {
				return nil, fmt.Errorf("mesh[%d]: %w", i, err)
			}
		}

		name := mc.Name
		if name == "" {
			name = mc.Source
		}
		m := render.NewMesh(name, packet)
		m.SetPosition(vec(mc.Position))
		m.SetRotation(vec(mc.Rotation))
		m.SetScale(vec(mc.Scale))
		scene.AddMesh(m)

		if logger != nil {
			logger.Debug("mesh ready", "name", name, "triangles", packet.TriangleCount(), "vertices", packet.VertexCount())
		}
	}

	for i, lc := range c.Lights {
		col, err := render.ParseHexColor(lc.Color)
		if err != nil {
			return nil, fmt.Errorf("light[%d]: %w", i, err)
		}
		l := render.NewLight(vec(lc.Position), col)
		l.Intensity = lc.Intensity
		scene.AddLight(l)
	}

	scene.SetCamera(render.NewCamera(vec(c.Camera.Position), c.Camera.Yaw, c.Camera.Pitch))
	return scene, nil
}

func recolor(p *models.Packet, hex string) error {
	col, err := render.ParseHexColor(hex)
	if err != nil {
		return err
	}
	tris := p.Triangles()
	for i := range tris {
		tris[i].Color = col
	}
	return p.SetTriangles(tris)
}

func vec(a [3]float64) math3d.Vec3 {
	return math3d.V3(a[0], a[1], a[2])
}
