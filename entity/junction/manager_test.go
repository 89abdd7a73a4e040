package junction_test

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/optitraffic/entity"
	"github.com/tsinghua-fib-lab/optitraffic/entity/vehicle"
	"github.com/tsinghua-fib-lab/optitraffic/task"
	"github.com/tsinghua-fib-lab/optitraffic/utils/config"
)

// 900×900、两横两纵的网格场景，路口位于(300,300)(600,300)(300,600)(600,600)
func newTestContext(t *testing.T) *task.Context {
	ctx, err := task.NewContext(config.Config{
		Control: config.Control{
			Step: config.ControlStep{Start: 0, Total: 100, Interval: 1},
			Seed: 42,
		},
		World:  config.World{Width: 900, Height: 900, Roads: 2, RoadWidth: 80, VehicleSpeed: 100},
		Lights: config.Lights{Controller: "fixed"},
	})
	assert.NoError(t, err)
	return ctx
}

func addVehicle(ctx *task.Context, id int32, position, direction geometry.Point) entity.IVehicle {
	v := vehicle.NewVehicle(id, position, direction, 100)
	ctx.VehicleManager().AddVehicle(v)
	return v
}

func classify(ctx *task.Context) {
	ctx.VehicleManager().Prepare()
	ctx.JunctionManager().Prepare(ctx.VehicleManager().Vehicles())
}

func TestManagerStableIDs(t *testing.T) {
	ctx := newTestContext(t)
	jm := ctx.JunctionManager()
	junctions := jm.Junctions()
	assert.Len(t, junctions, 4)

	// 标识按坐标排序（先y后x）分配
	assert.Equal(t, geometry.Point{X: 300, Y: 300}, jm.Get(0).Position())
	assert.Equal(t, geometry.Point{X: 600, Y: 300}, jm.Get(1).Position())
	assert.Equal(t, geometry.Point{X: 300, Y: 600}, jm.Get(2).Position())
	assert.Equal(t, geometry.Point{X: 600, Y: 600}, jm.Get(3).Position())

	assert.Panics(t, func() { jm.Get(99) })
}

func TestPrepareClassifiesNearestAhead(t *testing.T) {
	ctx := newTestContext(t)
	jm := ctx.JunctionManager()

	// 两个路口之间向右行驶：归属前方的(600,300)
	v := addVehicle(ctx, 0, geometry.Point{X: 450, Y: 300}, entity.DirRight)
	classify(ctx)
	assert.Equal(t, jm.Get(1), v.ApproachJunction())
	assert.Equal(t, 150., v.DistanceToLight())
	assert.Len(t, jm.Get(1).Approaching(entity.HeadingE), 1)
	assert.Equal(t, 0, jm.Get(0).ApproachCount())
}

func TestPrepareRespectsDirection(t *testing.T) {
	ctx := newTestContext(t)
	jm := ctx.JunctionManager()

	// 同一位置向左行驶：归属(300,300)
	v := addVehicle(ctx, 0, geometry.Point{X: 450, Y: 300}, entity.DirLeft)
	classify(ctx)
	assert.Equal(t, jm.Get(0), v.ApproachJunction())
	assert.Len(t, jm.Get(0).Approaching(entity.HeadingW), 1)
}

func TestPrepareLaneBand(t *testing.T) {
	ctx := newTestContext(t)
	jm := ctx.JunctionManager()

	// 横向偏差超过半个道路宽度：不归属任何路口
	v := addVehicle(ctx, 0, geometry.Point{X: 450, Y: 100}, entity.DirRight)
	classify(ctx)
	assert.Nil(t, v.ApproachJunction())
	for _, j := range jm.Junctions() {
		assert.Equal(t, 0, j.ApproachCount())
	}

	// 偏差在带宽内：仍然归属
	v2 := addVehicle(ctx, 1, geometry.Point{X: 450, Y: 320}, entity.DirRight)
	classify(ctx)
	assert.Equal(t, jm.Get(1), v2.ApproachJunction())
}

func TestPrepareRebuildsEachFrame(t *testing.T) {
	ctx := newTestContext(t)
	jm := ctx.JunctionManager()

	addVehicle(ctx, 0, geometry.Point{X: 450, Y: 300}, entity.DirRight)
	classify(ctx)
	assert.Equal(t, 1, jm.Get(1).ApproachCount())

	// 下一帧重建接近集合，不残留上一帧的成员
	classify(ctx)
	assert.Equal(t, 1, jm.Get(1).ApproachCount())
}

func TestObservation(t *testing.T) {
	ctx := newTestContext(t)
	jm := ctx.JunctionManager()

	// 向右的车距信号灯40，向下的车距信号灯50
	addVehicle(ctx, 0, geometry.Point{X: 260, Y: 300}, entity.DirRight)
	addVehicle(ctx, 1, geometry.Point{X: 300, Y: 250}, entity.DirDown)
	classify(ctx)

	obs := jm.Get(0).Observation()
	assert.Len(t, obs, 20)
	// 车辆数，按N、S、E、W固定顺序
	assert.Equal(t, []float64{1, 0, 1, 0}, obs[0:4])
	// 平均距离，空方位为0
	assert.Equal(t, []float64{50, 0, 40, 0}, obs[4:8])
	// 移动占比，初始车辆均处于移动状态
	assert.Equal(t, []float64{1, 0, 1, 0}, obs[8:12])
	// 平均相对坐标(dx, dy)
	assert.Equal(t, []float64{0, -50, 0, 0, -40, 0, 0, 0}, obs[12:20])

	// 空路口的观测为全零
	empty := jm.Get(3).Observation()
	assert.Equal(t, make([]float64, 20), empty)
}

func TestReward(t *testing.T) {
	ctx := newTestContext(t)
	jm := ctx.JunctionManager()

	addVehicle(ctx, 0, geometry.Point{X: 260, Y: 300}, entity.DirRight)
	addVehicle(ctx, 1, geometry.Point{X: 300, Y: 250}, entity.DirDown)
	classify(ctx)

	j := jm.Get(0)
	// 绿灯放行东西向：moved=1，排队2，停车0
	assert.InDelta(t, 1-0.1*2, j.Reward(entity.LightStateGreen), 1e-9)
	// 红灯放行南北向
	assert.InDelta(t, 1-0.1*2, j.Reward(entity.LightStateRed), 1e-9)
	// 黄灯不放行任何方向
	assert.InDelta(t, -0.1*2, j.Reward(entity.LightStateYellow), 1e-9)
}

func TestSetLightValidation(t *testing.T) {
	ctx := newTestContext(t)
	j := ctx.JunctionManager().Get(0)

	j.SetLight(entity.LightStateGreen)
	assert.Equal(t, entity.LightStateGreen, j.Light())
	assert.Panics(t, func() { j.SetLight(entity.LightState(7)) })
}
