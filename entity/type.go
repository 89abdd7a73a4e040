package entity

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
)

// LightState 信号灯显示状态
// 说明：取值恒为三种之一，状态只由信控策略写入；
// 枚举顺序与RL动作编号一致（动作i对应ActionStates[i]）
type LightState int32

const (
	LightStateRed    LightState = 0 // 红灯：东西向车流停止，南北向放行
	LightStateGreen  LightState = 1 // 绿灯：东西向放行，南北向停止
	LightStateYellow LightState = 2 // 黄灯：过渡相位，所有进入车流停止
)

// ActionStates RL动作编号到信号灯状态的固定映射表
var ActionStates = [3]LightState{LightStateRed, LightStateGreen, LightStateYellow}

// StateOfAction 由动作编号取信号灯状态
// 功能：带边界校验的动作→状态映射
// 说明：动作编号越界属于编程错误，直接panic
func StateOfAction(action int) LightState {
	if action < 0 || action >= len(ActionStates) {
		panic(fmt.Sprintf("entity: action %d out of range [0, %d)", action, len(ActionStates)))
	}
	return ActionStates[action]
}

// String 获取信号灯状态的字符串表示
func (s LightState) String() string {
	switch s {
	case LightStateRed:
		return "RED"
	case LightStateGreen:
		return "GREEN"
	case LightStateYellow:
		return "YELLOW"
	default:
		return fmt.Sprintf("LightState(%d)", int32(s))
	}
}

// Heading 车辆的进入方位标签（N/S/E/W）
type Heading int32

const (
	HeadingN Heading = iota // 向屏幕下方行驶（direction=(0,1)）
	HeadingS                // 向屏幕上方行驶（direction=(0,-1)）
	HeadingE                // 向右行驶（direction=(1,0)）
	HeadingW                // 向左行驶（direction=(-1,0)）

	NumHeadings = 4
)

// Headings 全部方位标签，固定遍历顺序N、S、E、W
var Headings = [NumHeadings]Heading{HeadingN, HeadingS, HeadingE, HeadingW}

// 四个允许的单位方向向量
var (
	DirDown  = geometry.Point{X: 0, Y: 1}
	DirUp    = geometry.Point{X: 0, Y: -1}
	DirRight = geometry.Point{X: 1, Y: 0}
	DirLeft  = geometry.Point{X: -1, Y: 0}
)

// String 获取方位标签的字符串表示
func (h Heading) String() string {
	switch h {
	case HeadingN:
		return "N"
	case HeadingS:
		return "S"
	case HeadingE:
		return "E"
	case HeadingW:
		return "W"
	default:
		return fmt.Sprintf("Heading(%d)", int32(h))
	}
}

// HeadingOf 由方向向量得到方位标签
// 功能：按固定映射表(0,1)→N、(0,-1)→S、(1,0)→E、(-1,0)→W转换
// 返回：方位标签与是否合法
// 说明：方向向量只允许四个轴向单位向量，调用方对非法向量必须失败
func HeadingOf(direction geometry.Point) (Heading, bool) {
	switch {
	case direction.X == 0 && direction.Y == 1:
		return HeadingN, true
	case direction.X == 0 && direction.Y == -1:
		return HeadingS, true
	case direction.X == 1 && direction.Y == 0:
		return HeadingE, true
	case direction.X == -1 && direction.Y == 0:
		return HeadingW, true
	default:
		return 0, false
	}
}

// IsHorizontal 判断方位是否为东西向
func (h Heading) IsHorizontal() bool {
	return h == HeadingE || h == HeadingW
}

// VehicleSnapshot 车辆渲染快照
// 说明：渲染方只读，不会回写仿真状态
type VehicleSnapshot struct {
	ID        int32
	Position  geometry.Point
	Direction geometry.Point
	Moving    bool
}

// LightSnapshot 信号灯渲染快照
type LightSnapshot struct {
	ID       int32
	Position geometry.Point
	State    LightState
}
