package junction

import (
	"math"
	"sort"

	"git.fiblab.net/general/common/v2/geometry"
	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/optitraffic/entity"
)

// Manager 路口管理器
// 功能：持有全部路口，负责每帧的接近集合重建（车辆→路口分类）
type Manager struct {
	ctx entity.ITaskContext

	data      map[int32]*Junction
	junctions []*Junction

	laneBand float64 // 车道横向判定带宽（道路宽度的一半）
}

// NewManager 创建路口管理器实例
// 功能：按运行时配置中的路口坐标初始化所有路口
// 参数：ctx-任务上下文
// 返回：新创建的路口管理器实例
// 说明：路口标识按坐标排序（先y后x）分配，保证同一配置下标识稳定
func NewManager(ctx entity.ITaskContext) *Manager {
	rc := ctx.RuntimeConfig()
	positions := append(rc.JunctionPositions[:0:0], rc.JunctionPositions...)
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Y != positions[j].Y {
			return positions[i].Y < positions[j].Y
		}
		return positions[i].X < positions[j].X
	})

	m := &Manager{
		ctx:      ctx,
		laneBand: rc.All.World.RoadWidth / 2,
	}
	m.junctions = lo.Map(positions, func(p geometry.Point, i int) *Junction {
		return newJunction(int32(i), p)
	})
	m.data = lo.SliceToMap(m.junctions, func(j *Junction) (int32, *Junction) {
		return j.id, j
	})
	return m
}

// Get 根据ID获取路口实例
// 说明：通过路口ID查找对应的路口对象，如果不存在则panic
func (m *Manager) Get(id int32) entity.IJunction {
	j, ok := m.data[id]
	if !ok {
		log.Panicf("no junction with id %d", id)
	}
	return j
}

// Junctions 获取全部路口（固定顺序）
func (m *Manager) Junctions() []entity.IJunction {
	return lo.Map(m.junctions, func(j *Junction, _ int) entity.IJunction {
		return j
	})
}

// Prepare 准备阶段：重建接近集合
// 功能：清空所有路口的接近集合，将每辆车分类到至多一个路口
// 参数：vehicles-当前帧的全部车辆
// 算法说明：
// 1. 清空全部路口的接近集合与车辆的接近缓存
// 2. 对每辆车，在其行驶车道上（横向偏差不超过半个道路宽度）
//    寻找行进方向前方最近的路口（相对位移与方向向量点积为正）
// 3. 命中时将车辆加入该路口对应方位的接近集合，
//    并回写车辆到信号灯的欧氏距离
// 说明：取前方最近路口保证每辆车至多接近一个路口；
// 必须先于信控更新与停车判定执行，两者都消费新鲜的接近集合
func (m *Manager) Prepare(vehicles []entity.IVehicle) {
	for _, j := range m.junctions {
		j.ClearApproaching()
	}
	for _, v := range vehicles {
		v.ClearApproach()
		dir := v.Direction()
		var nearest *Junction
		nearestDist := mathutil.INF
		for _, j := range m.junctions {
			rel := geometry.Point{X: j.position.X - v.Position().X, Y: j.position.Y - v.Position().Y}
			// 行进方向前方
			if rel.X*dir.X+rel.Y*dir.Y <= 0 {
				continue
			}
			// 车道横向判定：运动轴的垂直分量落在道路带宽内
			cross := rel.X*dir.Y - rel.Y*dir.X
			if math.Abs(cross) > m.laneBand {
				continue
			}
			if dist := math.Hypot(rel.X, rel.Y); dist < nearestDist {
				nearest = j
				nearestDist = dist
			}
		}
		if nearest != nil {
			nearest.AddApproaching(v)
			v.SetApproach(nearest, nearestDist)
		}
	}
}

// Snapshot 渲染用只读快照
func (m *Manager) Snapshot() []entity.LightSnapshot {
	return lo.Map(m.junctions, func(j *Junction, _ int) entity.LightSnapshot {
		return entity.LightSnapshot{
			ID:       j.id,
			Position: j.position,
			State:    j.light,
		}
	})
}
