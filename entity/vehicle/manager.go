package vehicle

import (
	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/optitraffic/entity"
	"github.com/tsinghua-fib-lab/optitraffic/utils/container"
	"github.com/tsinghua-fib-lab/optitraffic/utils/randengine"
)

// Manager 车辆管理器
// 功能：持有全部车辆，执行每帧的停车判定、运动、越界移除与指标累计，
// 并承担边界泊松生成器的职责
// 说明：通过计数器累计通过车辆数与等待时间，计数器只在每帧的
// 更新路径内变更，不存在全局状态
type Manager struct {
	ctx entity.ITaskContext

	vehicles *container.IncrementalArray[*Vehicle]
	nextID   int32

	generator *randengine.Engine

	totalPassed   int32   // 累计通过（离开可见区域）的车辆数
	totalWaitTime float64 // 累计等待时间（秒）
}

// NewManager 创建车辆管理器实例
// 参数：ctx-任务上下文
// 返回：新创建的车辆管理器实例
func NewManager(ctx entity.ITaskContext) *Manager {
	return &Manager{
		ctx:       ctx,
		vehicles:  container.NewIncrementalArray[*Vehicle](),
		generator: randengine.New(ctx.RuntimeConfig().C.Seed),
	}
}

// AddVehicle 加入新车辆
// 功能：生成器（或外部注入方）的车辆入口，下一帧Prepare时生效
// 说明：除正常生命周期外不做额外校验
func (m *Manager) AddVehicle(v entity.IVehicle) {
	vv, ok := v.(*Vehicle)
	if !ok {
		log.Panicf("cannot add foreign vehicle implementation %T", v)
	}
	m.vehicles.Add(vv)
}

// Vehicles 获取当前帧的全部车辆视图
func (m *Manager) Vehicles() []entity.IVehicle {
	return lo.Map(m.vehicles.Data(), func(v *Vehicle, _ int) entity.IVehicle {
		return v
	})
}

// Prepare 准备阶段：应用上一帧的车辆增删
func (m *Manager) Prepare() {
	m.vehicles.Prepare()
}

// Update 更新阶段：停车判定、运动与越界移除
// 功能：执行每帧的车辆主逻辑
// 参数：dt-时间步长
// 算法说明：
// 1. 对每辆车做停车判定（信号灯规则+跟车规则），停车帧速度为0，
//    等待时间累加dt
// 2. 未停车的车辆按标称速度沿方向向量平移
// 3. 平移后越过可见区域边界的车辆标记为已离开并从世界中移除，
//    通过计数加一（越界属于正常生命周期终止，不是错误）
// 说明：判定消费的是本帧刚重建的接近集合与信控结果；
// 移除在下一次Prepare才真正生效，已离开的车辆在本帧剩余的
// 跟车判定中不再构成障碍，但在快照中仍保留到下一帧
func (m *Manager) Update(dt float64) {
	w := m.ctx.RuntimeConfig().All.World
	data := m.vehicles.Data()
	for _, v := range data {
		if mustStop(v, data) {
			v.moving = false
			m.totalWaitTime += dt
			continue
		}
		v.moving = true
		v.position.X += v.direction.X * v.speed * dt
		v.position.Y += v.direction.Y * v.speed * dt
		if v.position.X < 0 || v.position.X > w.Width || v.position.Y < 0 || v.position.Y > w.Height {
			v.departed = true
			m.vehicles.Remove(v)
			m.totalPassed++
		}
	}
}

// Spawn 边界车辆生成
// 功能：按四个边界各自的泊松到达率生成新车辆
// 参数：dt-时间步长
// 算法说明：
// 1. 每个边界按λ=rate×dt做泊松抽样得到本帧生成数
// 2. 随机选择一条道路，按右侧通行偏移到对应车道：
//    上边界向下行驶（中心+偏移）、下边界向上（中心−偏移）、
//    左边界向右（中心−偏移）、右边界向左（中心+偏移）
// 说明：车道偏移为道路宽度的四分之一，几何量来自运行时配置
func (m *Manager) Spawn(dt float64) {
	rc := m.ctx.RuntimeConfig()
	w := rc.All.World
	s := rc.All.Spawning

	for i := 0; i < m.generator.Poisson(s.Top*dt); i++ {
		x := rc.RoadCentersX[m.generator.Intn(len(rc.RoadCentersX))] + rc.LaneOffset
		m.spawnAt(geometry.Point{X: x, Y: 0}, entity.DirDown)
	}
	for i := 0; i < m.generator.Poisson(s.Bottom*dt); i++ {
		x := rc.RoadCentersX[m.generator.Intn(len(rc.RoadCentersX))] - rc.LaneOffset
		m.spawnAt(geometry.Point{X: x, Y: w.Height}, entity.DirUp)
	}
	for i := 0; i < m.generator.Poisson(s.Left*dt); i++ {
		y := rc.RoadCentersY[m.generator.Intn(len(rc.RoadCentersY))] - rc.LaneOffset
		m.spawnAt(geometry.Point{X: 0, Y: y}, entity.DirRight)
	}
	for i := 0; i < m.generator.Poisson(s.Right*dt); i++ {
		y := rc.RoadCentersY[m.generator.Intn(len(rc.RoadCentersY))] + rc.LaneOffset
		m.spawnAt(geometry.Point{X: w.Width, Y: y}, entity.DirLeft)
	}
}

func (m *Manager) spawnAt(position, direction geometry.Point) {
	v := NewVehicle(m.nextID, position, direction, m.ctx.RuntimeConfig().All.World.VehicleSpeed)
	m.nextID++
	m.AddVehicle(v)
}

// VehiclesPassed 获取累计通过的车辆数
func (m *Manager) VehiclesPassed() int32 {
	return m.totalPassed
}

// TotalWaitTime 获取累计等待时间（秒）
func (m *Manager) TotalWaitTime() float64 {
	return m.totalWaitTime
}

// Snapshot 渲染用只读快照
func (m *Manager) Snapshot() []entity.VehicleSnapshot {
	return lo.Map(m.vehicles.Data(), func(v *Vehicle, _ int) entity.VehicleSnapshot {
		return entity.VehicleSnapshot{
			ID:        v.id,
			Position:  v.position,
			Direction: v.direction,
			Moving:    v.moving,
		}
	})
}
