package vehicle

import (
	"math"

	"github.com/tsinghua-fib-lab/optitraffic/entity"
)

const (
	// lightStopDistance 信号灯停车判定距离
	lightStopDistance = 40
	// followStopDistance 跟车停车判定距离
	followStopDistance = 13
	// laneAlignTolerance 同车道判定的横向容差
	laneAlignTolerance = 1
)

// mustStop 停车判定
// 功能：决定车辆本帧是否必须保持原位，每帧重新判定，不跨帧锁定
// 参数：v-被判定车辆，vehicles-当前帧全部车辆
// 返回：true表示本帧速度为0
// 算法说明（按优先级）：
// 1. 信号灯规则：车辆属于某路口的接近集合且距信号灯不超过40时，
//    黄灯一律停车；红灯停东西向车流；绿灯停南北向车流
//    （绿灯放行东西向、红灯放行南北向，两轴不会同时放行）
// 2. 跟车规则：前方同向同车道（横向偏差小于1）车辆的投影距离
//    小于13时停车
func mustStop(v *Vehicle, vehicles []*Vehicle) bool {
	// 信号灯规则
	if j := v.approach; j != nil && v.distanceToLight <= lightStopDistance {
		switch j.Light() {
		case entity.LightStateYellow:
			return true
		case entity.LightStateRed:
			if v.heading.IsHorizontal() {
				return true
			}
		case entity.LightStateGreen:
			if !v.heading.IsHorizontal() {
				return true
			}
		}
	}
	// 跟车规则；已越界待移除的车辆不再构成障碍
	for _, other := range vehicles {
		if other == v || other.departed || other.direction != v.direction {
			continue
		}
		relX := other.position.X - v.position.X
		relY := other.position.Y - v.position.Y
		// 同车道：运动轴的垂直分量足够小
		if math.Abs(relX*v.direction.Y-relY*v.direction.X) >= laneAlignTolerance {
			continue
		}
		// 前方：相对位移与方向向量点积为正
		gap := relX*v.direction.X + relY*v.direction.Y
		if gap > 0 && gap < followStopDistance {
			return true
		}
	}
	return false
}
