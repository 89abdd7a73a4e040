package trafficlight

import "github.com/tsinghua-fib-lab/optitraffic/entity"

// fixedCycle 固定相位信控
// 功能：以一个全局相位计时器驱动GREEN/YELLOW/RED状态机，
// 每帧把当前状态推送给所有信号灯
// 说明：该策略下所有信号灯共享同一相位，没有路口独立性
type fixedCycle struct {
	junctions []entity.IJunction

	greenDuration  float64
	yellowDuration float64
	redDuration    float64

	state       entity.LightState // 当前状态
	previous    entity.LightState // 上一个状态，用于黄灯后的流向判断
	timeInState float64           // 当前状态驻留时间，切换时清零
}

// newFixedCycle 创建固定相位信控
// 说明：初始状态为绿灯，上一状态播种为红灯，使首个黄灯后转向红灯
func newFixedCycle(junctions []entity.IJunction, green, yellow, red float64) *fixedCycle {
	return &fixedCycle{
		junctions:      junctions,
		greenDuration:  green,
		yellowDuration: yellow,
		redDuration:    red,
		state:          entity.LightStateGreen,
		previous:       entity.LightStateRed,
	}
}

// Update 推进固定相位状态机
// 功能：累加驻留时间，执行至多一次状态切换，并推送到所有信号灯
// 参数：dt-时间步长
// 算法说明：
// 1. 绿灯驻留满green_duration后转黄灯
// 2. 黄灯驻留满yellow_duration后，上一状态为绿则转红，否则转绿
//    （黄灯恒为绿红之间的过渡相位）
// 3. 红灯驻留满red_duration后转黄灯
// 说明：相位时长假定远大于帧间隔，单帧至多切换一次
func (c *fixedCycle) Update(dt float64) {
	c.timeInState += dt

	switch {
	case c.state == entity.LightStateGreen && c.timeInState >= c.greenDuration:
		c.switchTo(entity.LightStateYellow)
	case c.state == entity.LightStateYellow && c.timeInState >= c.yellowDuration:
		if c.previous == entity.LightStateGreen {
			c.switchTo(entity.LightStateRed)
		} else {
			c.switchTo(entity.LightStateGreen)
		}
	case c.state == entity.LightStateRed && c.timeInState >= c.redDuration:
		c.switchTo(entity.LightStateYellow)
	}

	for _, j := range c.junctions {
		j.SetLight(c.state)
	}
}

func (c *fixedCycle) switchTo(next entity.LightState) {
	c.previous = c.state
	c.state = next
	c.timeInState = 0
}
