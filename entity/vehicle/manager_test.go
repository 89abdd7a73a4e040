package vehicle_test

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/optitraffic/entity"
	"github.com/tsinghua-fib-lab/optitraffic/entity/vehicle"
	"github.com/tsinghua-fib-lab/optitraffic/task"
	"github.com/tsinghua-fib-lab/optitraffic/utils/config"
)

// 900×900、两横两纵的网格场景，信号灯停车判定距离为40
func newTestContext(t *testing.T, spawning config.Spawning) *task.Context {
	ctx, err := task.NewContext(config.Config{
		Control: config.Control{
			Step: config.ControlStep{Start: 0, Total: 100, Interval: 1},
			Seed: 42,
		},
		World:    config.World{Width: 900, Height: 900, Roads: 2, RoadWidth: 80, VehicleSpeed: 100},
		Spawning: spawning,
		Lights:   config.Lights{Controller: "fixed"},
	})
	assert.NoError(t, err)
	return ctx
}

func addVehicle(ctx *task.Context, id int32, position, direction geometry.Point) entity.IVehicle {
	v := vehicle.NewVehicle(id, position, direction, 100)
	ctx.VehicleManager().AddVehicle(v)
	return v
}

func step(ctx *task.Context, dt float64) {
	ctx.VehicleManager().Prepare()
	ctx.JunctionManager().Prepare(ctx.VehicleManager().Vehicles())
	ctx.VehicleManager().Update(dt)
}

func TestNewVehicleInvalidDirection(t *testing.T) {
	assert.Panics(t, func() {
		vehicle.NewVehicle(0, geometry.Point{}, geometry.Point{X: 1, Y: 1}, 100)
	})
}

func TestVehicleMoves(t *testing.T) {
	ctx := newTestContext(t, config.Spawning{})
	v := addVehicle(ctx, 0, geometry.Point{X: 100, Y: 100}, entity.DirRight)

	step(ctx, 1)
	assert.True(t, v.IsMoving())
	assert.Equal(t, geometry.Point{X: 200, Y: 100}, v.Position())
	assert.Equal(t, 0., ctx.VehicleManager().TotalWaitTime())
}

func TestRedLightStopsHorizontal(t *testing.T) {
	ctx := newTestContext(t, config.Spawning{})
	vm := ctx.VehicleManager()
	jm := ctx.JunctionManager()

	// 路口初始为红灯，东西向车流在判定距离内必须停车
	v := addVehicle(ctx, 0, geometry.Point{X: 260, Y: 300}, entity.DirRight)
	step(ctx, 1)
	assert.Equal(t, entity.LightStateRed, jm.Get(0).Light())
	assert.False(t, v.IsMoving())
	assert.Equal(t, geometry.Point{X: 260, Y: 300}, v.Position())
	assert.Equal(t, 1., vm.TotalWaitTime())

	// 绿灯放行东西向
	jm.Get(0).SetLight(entity.LightStateGreen)
	step(ctx, 1)
	assert.True(t, v.IsMoving())
	assert.Equal(t, geometry.Point{X: 360, Y: 300}, v.Position())
	assert.Equal(t, 1., vm.TotalWaitTime())
}

func TestGreenLightStopsVertical(t *testing.T) {
	ctx := newTestContext(t, config.Spawning{})

	// 红灯放行南北向
	v := addVehicle(ctx, 0, geometry.Point{X: 300, Y: 260}, entity.DirDown)
	step(ctx, 1)
	assert.True(t, v.IsMoving())

	// 绿灯停南北向
	ctx2 := newTestContext(t, config.Spawning{})
	v2 := addVehicle(ctx2, 0, geometry.Point{X: 300, Y: 260}, entity.DirDown)
	ctx2.JunctionManager().Get(0).SetLight(entity.LightStateGreen)
	step(ctx2, 1)
	assert.False(t, v2.IsMoving())
}

func TestYellowLightStopsAll(t *testing.T) {
	ctx := newTestContext(t, config.Spawning{})
	jm := ctx.JunctionManager()

	horizontal := addVehicle(ctx, 0, geometry.Point{X: 260, Y: 300}, entity.DirRight)
	vertical := addVehicle(ctx, 1, geometry.Point{X: 600, Y: 260}, entity.DirDown)
	jm.Get(0).SetLight(entity.LightStateYellow)
	jm.Get(1).SetLight(entity.LightStateYellow)

	step(ctx, 1)
	assert.False(t, horizontal.IsMoving())
	assert.False(t, vertical.IsMoving())
}

func TestStopDistanceBoundary(t *testing.T) {
	ctx := newTestContext(t, config.Spawning{})

	// 距信号灯41：红灯不影响；恰好40：停车
	far := addVehicle(ctx, 0, geometry.Point{X: 259, Y: 300}, entity.DirRight)
	near := addVehicle(ctx, 1, geometry.Point{X: 260, Y: 600}, entity.DirRight)
	step(ctx, 1)
	assert.True(t, far.IsMoving())
	assert.False(t, near.IsMoving())
}

func TestCarFollowing(t *testing.T) {
	ctx := newTestContext(t, config.Spawning{})

	// 同车道同向，间距10<13：后车停车，前车正常
	front := addVehicle(ctx, 0, geometry.Point{X: 110, Y: 100}, entity.DirRight)
	rear := addVehicle(ctx, 1, geometry.Point{X: 100, Y: 100}, entity.DirRight)
	step(ctx, 1)
	assert.True(t, front.IsMoving())
	assert.False(t, rear.IsMoving())

	// 对向车辆不构成跟车关系
	ctx2 := newTestContext(t, config.Spawning{})
	a := addVehicle(ctx2, 0, geometry.Point{X: 110, Y: 100}, entity.DirLeft)
	b := addVehicle(ctx2, 1, geometry.Point{X: 100, Y: 100}, entity.DirRight)
	step(ctx2, 1)
	assert.True(t, a.IsMoving())
	assert.True(t, b.IsMoving())

	// 横向偏差达到容差的不算同车道
	ctx3 := newTestContext(t, config.Spawning{})
	c := addVehicle(ctx3, 0, geometry.Point{X: 110, Y: 101}, entity.DirRight)
	d := addVehicle(ctx3, 1, geometry.Point{X: 100, Y: 100}, entity.DirRight)
	step(ctx3, 1)
	assert.True(t, c.IsMoving())
	assert.True(t, d.IsMoving())
}

func TestBoundaryCull(t *testing.T) {
	ctx := newTestContext(t, config.Spawning{})
	vm := ctx.VehicleManager()

	addVehicle(ctx, 0, geometry.Point{X: 850, Y: 100}, entity.DirRight)
	step(ctx, 1)
	// 平移到950越过右边界，当帧移除并计数
	assert.Equal(t, int32(1), vm.VehiclesPassed())

	vm.Prepare()
	assert.Len(t, vm.Vehicles(), 0)
}

func TestDepartedVehicleIsNotAnObstacle(t *testing.T) {
	ctx := newTestContext(t, config.Spawning{})
	vm := ctx.VehicleManager()

	// 前车本帧越界离开，后车间距9<13：后车不受已离开车辆阻挡
	addVehicle(ctx, 0, geometry.Point{X: 899, Y: 100}, entity.DirRight)
	rear := addVehicle(ctx, 1, geometry.Point{X: 890, Y: 100}, entity.DirRight)
	step(ctx, 0.1)

	assert.Equal(t, int32(1), vm.VehiclesPassed())
	assert.True(t, rear.IsMoving())
	assert.Equal(t, geometry.Point{X: 900, Y: 100}, rear.Position())

	vm.Prepare()
	assert.Len(t, vm.Vehicles(), 1)
}

func TestSpawnLanes(t *testing.T) {
	ctx := newTestContext(t, config.Spawning{Top: 5, Bottom: 5, Left: 5, Right: 5})
	vm := ctx.VehicleManager().(*vehicle.Manager)

	for i := 0; i < 10; i++ {
		vm.Prepare()
		vm.Spawn(1)
	}
	vm.Prepare()
	vehicles := vm.Vehicles()
	assert.NotEmpty(t, vehicles)

	// 右侧通行：生成坐标恒为道路中心±车道偏移
	for _, v := range vehicles {
		switch v.Heading() {
		case entity.HeadingN:
			assert.Equal(t, 0., v.Position().Y)
			assert.Contains(t, []float64{320, 620}, v.Position().X)
		case entity.HeadingS:
			assert.Equal(t, 900., v.Position().Y)
			assert.Contains(t, []float64{280, 580}, v.Position().X)
		case entity.HeadingE:
			assert.Equal(t, 0., v.Position().X)
			assert.Contains(t, []float64{280, 580}, v.Position().Y)
		case entity.HeadingW:
			assert.Equal(t, 900., v.Position().X)
			assert.Contains(t, []float64{320, 620}, v.Position().Y)
		}
	}
}
