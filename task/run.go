package task

import (
	"flag"
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// prepare 准备阶段，每步执行一次
// 功能：在每个仿真步骤开始时进行准备工作
// 算法说明：
// 1. 心跳日志：定期输出当前步数与系统规模
// 2. 车辆管理器准备：应用上一帧的车辆增删
// 3. 路口管理器准备：按车辆当前位置重建各路口的接近集合
//
// 说明：确保所有系统组件在更新阶段前都处于正确状态
func (ctx *Context) prepare() {
	if ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		log.Infof(
			"STEP: %d(T=%.2fs) vehicles=%d passed=%d",
			ctx.clock.InternalStep, ctx.clock.T,
			len(ctx.vehicleManager.Vehicles()),
			ctx.vehicleManager.VehiclesPassed(),
		)
	}

	// Prepare
	ctx.vehicleManager.Prepare()
	ctx.junctionManager.Prepare(ctx.vehicleManager.Vehicles())
}

// update 更新阶段，每步执行一次
// 功能：在每个仿真步骤中执行主要的仿真逻辑
// 算法说明：
// 1. 信号灯控制器更新：推进相位（固定周期）或执行智能体决策与学习（MARL）
// 2. 车辆管理器更新：停车判定、运动积分、越界移除与指标累计
// 3. 边界生成：按泊松到达率在四个边界生成新车辆
//
// 说明：这是仿真的核心阶段，执行所有实体的状态更新
func (ctx *Context) update() {
	ctx.controller.Update(ctx.clock.DT)
	ctx.vehicleManager.Update(ctx.clock.DT)
	ctx.vehicleManager.Spawn(ctx.clock.DT)
}

// Run 运行
// 功能：从起始步推进到结束步，结束后写出运行记录
func (ctx *Context) Run() {
	ctx.clock.Init()
	for {
		ctx.prepare()
		ctx.update()
		log.Debugf("step %d: update complete", ctx.clock.InternalStep)
		ctx.clock.Next()
		if ctx.clock.Done() || ctx.closed.Load() {
			break
		}
	}
	log.Infof("engine complete")
	ctx.Close()
}
