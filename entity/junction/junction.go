package junction

import (
	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/optitraffic/entity"
)

// 每个路口的观测特征维数：4方位车辆数+4平均距离+4移动占比+8空间偏移
const ObservationDim = 20

// Junction 路口实体
// 功能：表示一个信号灯路口，持有固定坐标、当前信号灯状态
// 与按方位分组的接近车辆集合
// 说明：接近集合每帧由管理器清空重建，不跨帧保留；
// 信号灯状态只由信控策略写入
type Junction struct {
	id       int32          // 稳定标识，按路口坐标排序得到
	position geometry.Point // 路口坐标，构造后不再变化

	light       entity.LightState                     // 信号灯显示状态
	approaching [entity.NumHeadings][]entity.IVehicle // 按方位分组的接近车辆
}

// newJunction 创建并初始化一个新的Junction实例
// 参数：id-路口标识，position-路口坐标
// 返回：初始化完成的Junction实例，初始为红灯
func newJunction(id int32, position geometry.Point) *Junction {
	j := &Junction{
		id:       id,
		position: position,
		light:    entity.LightStateRed,
	}
	for h := range j.approaching {
		j.approaching[h] = make([]entity.IVehicle, 0)
	}
	return j
}

// ID 获取路口标识
func (j *Junction) ID() int32 {
	return j.id
}

// Position 获取路口坐标
func (j *Junction) Position() geometry.Point {
	return j.position
}

// Light 获取当前信号灯状态
func (j *Junction) Light() entity.LightState {
	return j.light
}

// SetLight 写入信号灯状态
// 说明：仅供信控策略调用，状态恒为三种枚举之一
func (j *Junction) SetLight(s entity.LightState) {
	switch s {
	case entity.LightStateRed, entity.LightStateGreen, entity.LightStateYellow:
		j.light = s
	default:
		log.Panicf("junction %d: invalid light state %d", j.id, s)
	}
}

// ClearApproaching 清空全部接近集合
// 说明：每帧分类前调用，集合整体重建避免陈旧成员
func (j *Junction) ClearApproaching() {
	for h := range j.approaching {
		j.approaching[h] = j.approaching[h][:0]
	}
}

// AddApproaching 将车辆加入对应方位的接近集合
// 说明：方位由车辆的方向向量唯一确定，非法方向在Heading()处panic
func (j *Junction) AddApproaching(v entity.IVehicle) {
	j.approaching[v.Heading()] = append(j.approaching[v.Heading()], v)
}

// Approaching 获取指定方位的接近车辆列表
func (j *Junction) Approaching(h entity.Heading) []entity.IVehicle {
	return j.approaching[h]
}

// ApproachCount 获取全部方位接近车辆总数
func (j *Junction) ApproachCount() int {
	n := 0
	for h := range j.approaching {
		n += len(j.approaching[h])
	}
	return n
}

// Observation 构建本路口的20维观测特征块
// 功能：为RL信控提供本路口的局部交通压力特征
// 返回：按[车辆数×4, 平均距离×4, 移动占比×4, 平均相对坐标×8]排列的特征
// 算法说明：
// 1. 四个方位各统计接近车辆数
// 2. 平均距离：接近车辆到信号灯距离的均值，空方位为0
// 3. 移动占比：接近车辆中处于移动状态的比例，空方位为0
// 4. 空间偏移：接近车辆相对路口坐标的平均(dx, dy)，空方位为0
func (j *Junction) Observation() []float64 {
	obs := make([]float64, 0, ObservationDim)
	// 车辆数
	for _, h := range entity.Headings {
		obs = append(obs, float64(len(j.approaching[h])))
	}
	// 平均距离
	for _, h := range entity.Headings {
		sum := 0.
		for _, v := range j.approaching[h] {
			sum += v.DistanceToLight()
		}
		obs = append(obs, sum/float64(max(1, len(j.approaching[h]))))
	}
	// 移动占比
	for _, h := range entity.Headings {
		moving := 0
		for _, v := range j.approaching[h] {
			if v.IsMoving() {
				moving++
			}
		}
		obs = append(obs, float64(moving)/float64(max(1, len(j.approaching[h]))))
	}
	// 空间偏移
	for _, h := range entity.Headings {
		dx, dy := 0., 0.
		if n := len(j.approaching[h]); n > 0 {
			for _, v := range j.approaching[h] {
				dx += v.Position().X - j.position.X
				dy += v.Position().Y - j.position.Y
			}
			dx /= float64(n)
			dy /= float64(n)
		}
		obs = append(obs, dx, dy)
	}
	return obs
}

// Reward 计算新信号灯状态下本路口的即时奖励
// 功能：为RL信控提供奖励信号，在联合动作施加后调用
// 参数：newState-本帧施加后的信号灯状态
// 返回：moved − 0.1×排队长度 − 0.2×停车数
// 算法说明：
// 1. moved统计方向与新状态放行轴一致且处于移动状态的接近车辆：
//    绿灯放行东西向（E/W），红灯放行南北向（N/S），黄灯不放行任何方向
// 2. 排队长度为四个方位接近车辆总数
// 3. 停车数为接近车辆中处于停止状态的数量
// 说明：停车惩罚重于排队惩罚，奖励吞吐、惩罚拥堵
func (j *Junction) Reward(newState entity.LightState) float64 {
	moved := 0
	stopped := 0
	for _, h := range entity.Headings {
		for _, v := range j.approaching[h] {
			if !v.IsMoving() {
				stopped++
				continue
			}
			if (newState == entity.LightStateGreen && h.IsHorizontal()) ||
				(newState == entity.LightStateRed && !h.IsHorizontal()) {
				moved++
			}
		}
	}
	return float64(moved) - 0.1*float64(j.ApproachCount()) - 0.2*float64(stopped)
}
