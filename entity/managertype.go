package entity

import (
	"github.com/tsinghua-fib-lab/optitraffic/clock"
	"github.com/tsinghua-fib-lab/optitraffic/utils/config"
)

// IJunctionManager 路口管理器接口
type IJunctionManager interface {
	// Get 按ID获取路口，不存在时panic
	Get(id int32) IJunction
	// Junctions 全部路口（固定顺序）
	Junctions() []IJunction
	// Prepare 准备阶段：清空并重建接近集合
	Prepare(vehicles []IVehicle)
	// Snapshot 渲染用只读快照
	Snapshot() []LightSnapshot
}

// IVehicleManager 车辆管理器接口
type IVehicleManager interface {
	// AddVehicle 加入新车辆（生成器入口），下一帧生效
	AddVehicle(v IVehicle)
	// Vehicles 当前帧的全部车辆视图
	Vehicles() []IVehicle
	// Prepare 准备阶段：应用上一帧的增删
	Prepare()
	// Update 更新阶段：停车判定、运动、越界移除与计数
	Update(dt float64)
	// VehiclesPassed 累计通过（离开可见区域）的车辆数
	VehiclesPassed() int32
	// TotalWaitTime 累计等待时间（秒）
	TotalWaitTime() float64
	// Snapshot 渲染用只读快照
	Snapshot() []VehicleSnapshot
}

// ITaskContext 仿真任务上下文接口
// 说明：以接口形式注入各管理器与全局配置，避免实体包之间的环依赖
type ITaskContext interface {
	Clock() *clock.Clock
	RuntimeConfig() *config.RuntimeConfig
	JunctionManager() IJunctionManager
	VehicleManager() IVehicleManager
}
