package trafficlight_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/optitraffic/entity"
	"github.com/tsinghua-fib-lab/optitraffic/utils/config"
)

func TestMARLProducesValidStates(t *testing.T) {
	ctx := newTestContext(t, config.Lights{
		Controller:  "marl",
		MinDuration: 1,
		MaxDuration: 10,
	})
	jm := ctx.JunctionManager()

	for i := 0; i < 50; i++ {
		ctx.Controller().Update(1)
		for _, j := range jm.Junctions() {
			assert.Contains(t, []entity.LightState{
				entity.LightStateRed, entity.LightStateGreen, entity.LightStateYellow,
			}, j.Light())
		}
	}
}

func TestMARLMinDurationHoldsAction(t *testing.T) {
	ctx := newTestContext(t, config.Lights{
		Controller:  "marl",
		MinDuration: 5,
		MaxDuration: 10,
	})
	jm := ctx.JunctionManager()

	// 驻留时间不足min_duration时强制重复上一动作：
	// 初始动作为红灯，前4帧所有信号灯必须保持红灯
	for i := 0; i < 4; i++ {
		ctx.Controller().Update(1)
		for _, j := range jm.Junctions() {
			assert.Equal(t, entity.LightStateRed, j.Light())
		}
	}
}

func TestMARLMaxDurationForcesChange(t *testing.T) {
	ctx := newTestContext(t, config.Lights{
		Controller:  "marl",
		MinDuration: 1,
		MaxDuration: 3,
	})
	jm := ctx.JunctionManager()

	// 驻留时间达到max_duration时强制切换：
	// 任何信号灯的同一状态连续长度不超过3帧
	runLength := make(map[int32]int)
	prev := make(map[int32]entity.LightState)
	for _, j := range jm.Junctions() {
		prev[j.ID()] = j.Light()
	}
	for i := 0; i < 100; i++ {
		ctx.Controller().Update(1)
		for _, j := range jm.Junctions() {
			if j.Light() == prev[j.ID()] {
				runLength[j.ID()]++
			} else {
				runLength[j.ID()] = 1
				prev[j.ID()] = j.Light()
			}
			assert.LessOrEqual(t, runLength[j.ID()], 3)
		}
	}
}
