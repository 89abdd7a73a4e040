package config_test

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/optitraffic/utils/config"
)

func baseConfig() config.Config {
	return config.Config{
		Control: config.Control{
			Step: config.ControlStep{Start: 0, Total: 100, Interval: 1},
			Seed: 42,
		},
		World: config.World{Width: 900, Height: 900, Roads: 2},
		Lights: config.Lights{
			Controller: "fixed",
		},
	}
}

func TestRuntimeConfigDefaults(t *testing.T) {
	rc, err := config.NewRuntimeConfig(baseConfig())
	assert.NoError(t, err)
	assert.Equal(t, 80., rc.All.World.RoadWidth)
	assert.Equal(t, 100., rc.All.World.VehicleSpeed)
	assert.Equal(t, 5., rc.All.Lights.GreenTime)
	assert.Equal(t, 2., rc.All.Lights.YellowTime)
	assert.Equal(t, 5., rc.All.Lights.RedTime)
	assert.Equal(t, 1., rc.All.Lights.MinDuration)
	assert.Equal(t, 10., rc.All.Lights.MaxDuration)
}

func TestRuntimeConfigDerivedGeometry(t *testing.T) {
	rc, err := config.NewRuntimeConfig(baseConfig())
	assert.NoError(t, err)

	// 第i条道路中心为 i*W/(n+1)
	assert.Equal(t, []float64{300, 600}, rc.RoadCentersX)
	assert.Equal(t, []float64{300, 600}, rc.RoadCentersY)
	assert.Equal(t, 20., rc.LaneOffset)

	// 网格路口为纵横道路中心的交点
	assert.Len(t, rc.JunctionPositions, 4)
	assert.Contains(t, rc.JunctionPositions, geometry.Point{X: 300, Y: 300})
	assert.Contains(t, rc.JunctionPositions, geometry.Point{X: 600, Y: 600})
}

func TestRuntimeConfigExplicitPositions(t *testing.T) {
	c := baseConfig()
	c.Lights.Positions = [][]float64{{100, 200}, {400, 500}}
	rc, err := config.NewRuntimeConfig(c)
	assert.NoError(t, err)
	assert.Equal(t, []geometry.Point{
		{X: 100, Y: 200},
		{X: 400, Y: 500},
	}, rc.JunctionPositions)
}

func TestRuntimeConfigValidation(t *testing.T) {
	c := baseConfig()
	c.Control.Step.Total = 0
	_, err := config.NewRuntimeConfig(c)
	assert.Error(t, err)

	c = baseConfig()
	c.Control.Step.Interval = -1
	_, err = config.NewRuntimeConfig(c)
	assert.Error(t, err)

	c = baseConfig()
	c.World.Roads = 0
	_, err = config.NewRuntimeConfig(c)
	assert.Error(t, err)

	c = baseConfig()
	c.World.Width = -900
	_, err = config.NewRuntimeConfig(c)
	assert.Error(t, err)

	c = baseConfig()
	c.Spawning.Left = -0.5
	_, err = config.NewRuntimeConfig(c)
	assert.Error(t, err)

	c = baseConfig()
	c.Lights.MinDuration = 10
	c.Lights.MaxDuration = 5
	_, err = config.NewRuntimeConfig(c)
	assert.Error(t, err)

	c = baseConfig()
	c.Lights.Positions = [][]float64{{100}}
	_, err = config.NewRuntimeConfig(c)
	assert.Error(t, err)

	c = baseConfig()
	c.Lights.Positions = [][]float64{{1000, 100}}
	_, err = config.NewRuntimeConfig(c)
	assert.Error(t, err)
}
