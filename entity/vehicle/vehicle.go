package vehicle

import (
	"git.fiblab.net/general/common/v2/geometry"
	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/tsinghua-fib-lab/optitraffic/entity"
	"github.com/tsinghua-fib-lab/optitraffic/utils/container"
)

// Vehicle 车辆实体
// 功能：以点表示的运动实体，持有坐标、单位方向向量与本帧的运动标志
// 说明：由生成器创建，越过可见区域边界的当帧从世界中移除；
// 车辆只被车辆管理器持有，移除后不再存活
type Vehicle struct {
	container.IncrementalItemBase

	id        int32
	position  geometry.Point
	direction geometry.Point // 四个轴向单位向量之一
	speed     float64        // 标称速度，停车帧速度为0

	moving          bool             // 本帧速度是否大于0
	departed        bool             // 已越界离开世界，待下一次Prepare移除
	heading         entity.Heading   // 由方向向量导出的方位标签
	distanceToLight float64          // 到所接近信号灯的距离，默认为大哨兵值
	approach        entity.IJunction // 所接近的路口，可能为nil
}

// NewVehicle 创建车辆实例
// 参数：id-车辆标识，position-初始坐标，direction-单位方向向量，speed-标称速度
// 返回：初始化完成的车辆实例
// 说明：方向向量只允许四个轴向单位向量，非法方向属于编程错误，直接panic
func NewVehicle(id int32, position, direction geometry.Point, speed float64) *Vehicle {
	heading, ok := entity.HeadingOf(direction)
	if !ok {
		log.Panicf("vehicle %d: invalid direction (%f, %f)", id, direction.X, direction.Y)
	}
	return &Vehicle{
		id:              id,
		position:        position,
		direction:       direction,
		speed:           speed,
		moving:          true,
		heading:         heading,
		distanceToLight: mathutil.INF,
	}
}

// ID 获取车辆标识
func (v *Vehicle) ID() int32 {
	return v.id
}

// Position 获取当前坐标
func (v *Vehicle) Position() geometry.Point {
	return v.position
}

// Direction 获取单位方向向量
func (v *Vehicle) Direction() geometry.Point {
	return v.direction
}

// Heading 获取方位标签
func (v *Vehicle) Heading() entity.Heading {
	return v.heading
}

// IsMoving 本帧速度是否大于0
func (v *Vehicle) IsMoving() bool {
	return v.moving
}

// DistanceToLight 到所接近信号灯的距离
func (v *Vehicle) DistanceToLight() float64 {
	return v.distanceToLight
}

// SetApproach 回写接近信息（分类命中时由路口管理器调用）
func (v *Vehicle) SetApproach(j entity.IJunction, distance float64) {
	v.approach = j
	v.distanceToLight = distance
}

// ClearApproach 重置接近信息（每帧分类前调用）
func (v *Vehicle) ClearApproach() {
	v.approach = nil
	v.distanceToLight = mathutil.INF
}

// ApproachJunction 获取当前接近的路口，可能为nil
func (v *Vehicle) ApproachJunction() entity.IJunction {
	return v.approach
}
