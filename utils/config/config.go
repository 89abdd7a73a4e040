package config

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
)

// 缺省参数，与参考场景保持一致
const (
	defaultRoadWidth    = 80
	defaultVehicleSpeed = 100
	defaultGreenTime    = 5
	defaultYellowTime   = 2
	defaultRedTime      = 5
	defaultMinDuration  = 1
	defaultMaxDuration  = 10
)

// RuntimeConfig 运行时配置
// 功能：存储仿真运行时的配置信息，包含由道路布局推导出的几何量
// 说明：将YAML配置转换为运行时可用的配置对象，并进行合法性校验
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置

	RoadCentersX      []float64        // 纵向道路的x中心坐标
	RoadCentersY      []float64        // 横向道路的y中心坐标
	LaneOffset        float64          // 车道中心相对道路中心的偏移（道路宽度/4）
	JunctionPositions []geometry.Point // 路口（信号灯）坐标
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：创建运行时配置对象，填充默认值、校验配置并推导道路几何
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针与错误信息
// 算法说明：
// 1. 填充缺省值（道路宽度、车速、相位时长、驻留时间界限）
// 2. 校验场景参数（区域尺寸、道路条数、到达率、相位时长均需合法）
// 3. 推导道路中心：第i条道路中心为 i*W/(n+1)，i=1..n
// 4. 推导路口坐标：纵横道路中心的笛卡尔积；显式Positions优先
// 说明：配置错误属于致命错误，由调用方在启动时失败
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	rc := &RuntimeConfig{}

	if config.World.RoadWidth <= 0 {
		config.World.RoadWidth = defaultRoadWidth
	}
	if config.World.VehicleSpeed <= 0 {
		config.World.VehicleSpeed = defaultVehicleSpeed
	}
	if config.Lights.GreenTime <= 0 {
		config.Lights.GreenTime = defaultGreenTime
	}
	if config.Lights.YellowTime <= 0 {
		config.Lights.YellowTime = defaultYellowTime
	}
	if config.Lights.RedTime <= 0 {
		config.Lights.RedTime = defaultRedTime
	}
	if config.Lights.MinDuration <= 0 {
		config.Lights.MinDuration = defaultMinDuration
	}
	if config.Lights.MaxDuration <= 0 {
		config.Lights.MaxDuration = defaultMaxDuration
	}

	if config.Control.Step.Total <= 0 {
		return nil, fmt.Errorf("config: control.step.total must be positive, got %d", config.Control.Step.Total)
	}
	if config.Control.Step.Interval <= 0 {
		return nil, fmt.Errorf("config: control.step.interval must be positive, got %f", config.Control.Step.Interval)
	}
	if config.World.Width <= 0 || config.World.Height <= 0 {
		return nil, fmt.Errorf("config: world size must be positive, got %fx%f", config.World.Width, config.World.Height)
	}
	if config.World.Roads <= 0 {
		return nil, fmt.Errorf("config: world.roads must be positive, got %d", config.World.Roads)
	}
	if config.Lights.MinDuration >= config.Lights.MaxDuration {
		return nil, fmt.Errorf(
			"config: lights.min_duration %f must be less than lights.max_duration %f",
			config.Lights.MinDuration, config.Lights.MaxDuration,
		)
	}
	for _, rate := range []float64{
		config.Spawning.Top, config.Spawning.Bottom, config.Spawning.Left, config.Spawning.Right,
	} {
		if rate < 0 {
			return nil, fmt.Errorf("config: spawning rate must be non-negative, got %f", rate)
		}
	}

	rc.All = config
	rc.C = config.Control
	rc.LaneOffset = config.World.RoadWidth / 4

	n := config.World.Roads
	rc.RoadCentersX = make([]float64, 0, n)
	rc.RoadCentersY = make([]float64, 0, n)
	for i := 1; i <= n; i++ {
		rc.RoadCentersX = append(rc.RoadCentersX, float64(i)*config.World.Width/float64(n+1))
		rc.RoadCentersY = append(rc.RoadCentersY, float64(i)*config.World.Height/float64(n+1))
	}

	if len(config.Lights.Positions) > 0 {
		// 显式路口坐标
		rc.JunctionPositions = make([]geometry.Point, 0, len(config.Lights.Positions))
		for i, xy := range config.Lights.Positions {
			if len(xy) != 2 {
				return nil, fmt.Errorf("config: lights.positions[%d] must be [x, y], got %v", i, xy)
			}
			if xy[0] < 0 || xy[0] > config.World.Width || xy[1] < 0 || xy[1] > config.World.Height {
				return nil, fmt.Errorf("config: lights.positions[%d] %v is outside the world", i, xy)
			}
			rc.JunctionPositions = append(rc.JunctionPositions, geometry.Point{X: xy[0], Y: xy[1]})
		}
	} else {
		// 网格路口：纵横道路中心的交点
		rc.JunctionPositions = make([]geometry.Point, 0, n*n)
		for _, y := range rc.RoadCentersY {
			for _, x := range rc.RoadCentersX {
				rc.JunctionPositions = append(rc.JunctionPositions, geometry.Point{X: x, Y: y})
			}
		}
	}

	return rc, nil
}
