package entity

import "git.fiblab.net/general/common/v2/geometry"

// IVehicle 车辆实体接口
// 说明：供路口分类与信控观测读取的车辆视图
type IVehicle interface {
	ID() int32
	Position() geometry.Point
	Direction() geometry.Point
	// Heading 获取方位标签，方向向量非法时panic
	Heading() Heading
	// IsMoving 当前帧速度是否大于0
	IsMoving() bool
	// DistanceToLight 到所接近信号灯的距离，未接近任何信号灯时为大哨兵值
	DistanceToLight() float64
	// SetApproach 分类命中时由路口回写：所接近的路口与距离
	SetApproach(j IJunction, distance float64)
	// ClearApproach 每帧分类前重置接近信息
	ClearApproach()
	// ApproachJunction 当前接近的路口，可能为nil
	ApproachJunction() IJunction
}

// IJunction 路口（信号灯）实体接口
// 说明：供车辆停车判定与信控策略读取的路口视图
type IJunction interface {
	ID() int32
	Position() geometry.Point
	// Light 当前信号灯显示状态
	Light() LightState
	// SetLight 写入信号灯状态，仅允许信控策略调用
	SetLight(s LightState)
	// ClearApproaching 清空全部接近集合（每帧重建）
	ClearApproaching()
	// AddApproaching 将车辆按其方向向量加入对应方位的接近集合
	AddApproaching(v IVehicle)
	// Approaching 指定方位的接近车辆列表
	Approaching(h Heading) []IVehicle
	// ApproachCount 全部方位接近车辆总数
	ApproachCount() int
	// Observation 本路口的20维观测特征块
	Observation() []float64
	// Reward 在新信号灯状态下本路口的即时奖励
	Reward(newState LightState) float64
}

// ITrafficLightController 信控策略接口
// 说明：封闭的策略枚举（固定相位|MARL）之上的统一更新能力，
// 策略在构造时选定，运行期不做类型判断
type ITrafficLightController interface {
	Update(dt float64)
}
