package task

import (
	"fmt"
	"sync/atomic"

	"github.com/tsinghua-fib-lab/optitraffic/clock"
	"github.com/tsinghua-fib-lab/optitraffic/entity"
	"github.com/tsinghua-fib-lab/optitraffic/entity/junction"
	"github.com/tsinghua-fib-lab/optitraffic/entity/junction/trafficlight"
	"github.com/tsinghua-fib-lab/optitraffic/entity/vehicle"
	"github.com/tsinghua-fib-lab/optitraffic/output"
	"github.com/tsinghua-fib-lab/optitraffic/utils/config"
)

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态，替代全局变量
// 说明：管理仿真系统的所有组件，包括时钟、管理器、信控器与输出
type Context struct {

	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock

	// Junction管理器
	junctionManager *junction.Manager
	// Vehicle管理器
	vehicleManager *vehicle.Manager
	// 信号灯控制器
	controller entity.ITrafficLightController
	// 运行记录写入器
	recorder *output.Recorder

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig
}

// NewContext 创建新的仿真任务上下文
// 功能：初始化仿真系统的所有组件和配置
// 参数：c-配置对象
// 返回：初始化完成的Context实例
// 算法说明：
// 1. 校验配置并计算运行时派生量（道路中心、路口位置等）
// 2. 初始化时钟
// 3. 创建路口与车辆管理器
// 4. 根据配置构造信号灯控制器（未知策略报错）
// 5. 创建运行记录写入器
func NewContext(c config.Config) (*Context, error) {
	runtimeConfig, err := config.NewRuntimeConfig(c)
	if err != nil {
		return nil, fmt.Errorf("task: bad config: %w", err)
	}
	ctx := &Context{
		clock:         clock.New(c.Control.Step),
		runtimeConfig: runtimeConfig,
	}

	// 新建各类模拟对象
	ctx.junctionManager = junction.NewManager(ctx)
	ctx.vehicleManager = vehicle.NewManager(ctx)

	controller, err := trafficlight.New(ctx, ctx.junctionManager.Junctions())
	if err != nil {
		return nil, err
	}
	ctx.controller = controller

	ctx.recorder = output.NewRecorder(c.Output)
	return ctx, nil
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) JunctionManager() entity.IJunctionManager {
	return ctx.junctionManager
}

func (ctx *Context) VehicleManager() entity.IVehicleManager {
	return ctx.vehicleManager
}

func (ctx *Context) Controller() entity.ITrafficLightController {
	return ctx.controller
}

// VehicleSnapshots 渲染用车辆快照
func (ctx *Context) VehicleSnapshots() []entity.VehicleSnapshot {
	return ctx.vehicleManager.Snapshot()
}

// LightSnapshots 渲染用信号灯快照
func (ctx *Context) LightSnapshots() []entity.LightSnapshot {
	return ctx.junctionManager.Snapshot()
}

// VehiclesPassed 累计通过车辆数
func (ctx *Context) VehiclesPassed() int32 {
	return ctx.vehicleManager.VehiclesPassed()
}

// TotalWaitTime 累计等待时间（秒）
func (ctx *Context) TotalWaitTime() float64 {
	return ctx.vehicleManager.TotalWaitTime()
}

// Stop 请求仿真循环在当前步结束后退出
func (ctx *Context) Stop() {
	ctx.closed.Store(true)
}

// Close 收尾
// 功能：写出本次运行的汇总指标并释放输出资源
func (ctx *Context) Close() {
	record := output.NewRunRecord(
		ctx.runtimeConfig.All.Lights.Controller,
		ctx.vehicleManager.VehiclesPassed(),
		ctx.vehicleManager.TotalWaitTime(),
	)
	if err := ctx.recorder.Write(record); err != nil {
		log.Errorf("write run record: %v", err)
	}
	ctx.recorder.Close()
	log.Infof(
		"run %s finished: strategy=%s passed=%d wait=%.2fs",
		record.RunID, record.Strategy, record.VehiclesPassed, record.WaitTime,
	)
}
