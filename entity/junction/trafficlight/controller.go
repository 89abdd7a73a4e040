// 信号灯控制策略
// 固定相位：全部信号灯镜像同一个确定性的相位计时器
// MARL：每个路口一个独立的DQN智能体，共享全局观测、在线学习信号配时
package trafficlight

import (
	"fmt"

	"github.com/tsinghua-fib-lab/optitraffic/entity"
)

// 策略名枚举（封闭集合）
const (
	ControllerFixed = "fixed"
	ControllerMARL  = "marl"
)

// New 按配置创建信控策略
// 功能：从封闭的策略枚举中选择并构造信控实现
// 参数：ctx-任务上下文，junctions-受控路口列表
// 返回：信控策略实例与错误信息
// 说明：策略在构造时一次性选定；未知策略名是致命配置错误，
// 必须显式报错而不是静默回退
func New(ctx entity.ITaskContext, junctions []entity.IJunction) (entity.ITrafficLightController, error) {
	cfg := ctx.RuntimeConfig().All.Lights
	switch cfg.Controller {
	case ControllerFixed:
		return newFixedCycle(junctions, cfg.GreenTime, cfg.YellowTime, cfg.RedTime), nil
	case ControllerMARL:
		return newMARL(ctx, junctions), nil
	default:
		return nil, fmt.Errorf(
			"trafficlight: unknown controller type %q (must be %q or %q)",
			cfg.Controller, ControllerFixed, ControllerMARL,
		)
	}
}
