package service

import (
	"sort"
	"strings"

	"github.com/codi-diyt/actividades/internal/model"
	"github.com/codi-diyt/actividades/internal/pkg/config"
)

// Deduplicator 近似重复检测器
// 只在同一类别内两两比较；不同提交者的记录永远不合并（独立活动可能恰好同名）。
// 分组按相似度的传递闭包进行，避免依赖输入顺序的部分合并。
// 阈值与权重来自配置，属于报告配置面的一部分。
type Deduplicator struct {
	cfg config.DedupConfig
}

// NewDeduplicator 创建检测器
func NewDeduplicator(cfg config.DedupConfig) *Deduplicator {
	return &Deduplicator{cfg: cfg}
}

// Group 把记录划分为互不相交的重复组
// 对任意输入顺序产生同一划分；组内 Canonical 的选取同样与顺序无关。
func (d *Deduplicator) Group(records []model.NormalizedRecord) []model.DuplicateGroup {
	// 先按 SourceID 定序，使下标式并查集与输入顺序解耦
	recs := make([]model.NormalizedRecord, len(records))
	copy(recs, records)
	sort.Slice(recs, func(i, j int) bool { return recs[i].SourceID < recs[j].SourceID })

	parent := make([]int, len(recs))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	// 按类别分桶后两两评分
	byCategory := make(map[model.Category][]int)
	for i, r := range recs {
		byCategory[r.Category] = append(byCategory[r.Category], i)
	}
	for _, idxs := range byCategory {
		for a := 0; a < len(idxs); a++ {
			for b := a + 1; b < len(idxs); b++ {
				i, j := idxs[a], idxs[b]
				if d.Score(recs[i], recs[j]) >= d.cfg.Threshold {
					union(i, j)
				}
			}
		}
	}

	// 聚合为组并选取规范成员
	members := make(map[int][]int)
	for i := range recs {
		root := find(i)
		members[root] = append(members[root], i)
	}

	groups := make([]model.DuplicateGroup, 0, len(members))
	for _, idxs := range members {
		g := model.DuplicateGroup{Records: make([]model.NormalizedRecord, 0, len(idxs))}
		for _, i := range idxs {
			g.Records = append(g.Records, recs[i])
		}
		g.Canonical = pickCanonical(g.Records)
		groups = append(groups, g)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Canonical.SourceID < groups[j].Canonical.SourceID
	})
	return groups
}

// Score 两条记录的加权相似度，[0,1]
// 前置条件：同类别且同提交者邮箱，否则直接 0。
func (d *Deduplicator) Score(a, b model.NormalizedRecord) float64 {
	if a.Category != b.Category || a.OwnerEmail != b.OwnerEmail {
		return 0
	}

	titleSim := titleSimilarity(a.Title, b.Title)
	dateSim := d.dateProximity(a, b)

	total := d.cfg.TitleWeight + d.cfg.DateWeight + d.cfg.OwnerWeight
	// 邮箱一致是硬前置，到这里 owner 分量恒为 1
	return (d.cfg.TitleWeight*titleSim + d.cfg.DateWeight*dateSim + d.cfg.OwnerWeight) / total
}

// dateProximity 日期邻近度：同日为 1，窗口内线性降到 0.5，再过一个窗口降到 0
func (d *Deduplicator) dateProximity(a, b model.NormalizedRecord) float64 {
	days := a.Date.Sub(b.Date).Hours() / 24
	if days < 0 {
		days = -days
	}
	w := float64(d.cfg.DateWindowDays)
	switch {
	case days <= w:
		return 1 - 0.5*days/w
	case days <= 2*w:
		return 0.5 - 0.5*(days-w)/w
	default:
		return 0
	}
}

// pickCanonical 组内规范成员：提交版本最高者优先，
// 再比提交时间（新者优先），最后按 SourceID 字典序最小，保证可复现。
func pickCanonical(records []model.NormalizedRecord) model.NormalizedRecord {
	best := records[0]
	for _, r := range records[1:] {
		switch {
		case r.SubmissionVersion != best.SubmissionVersion:
			if r.SubmissionVersion > best.SubmissionVersion {
				best = r
			}
		case !r.SubmittedAt.Equal(best.SubmittedAt):
			if r.SubmittedAt.After(best.SubmittedAt) {
				best = r
			}
		default:
			if r.SourceID < best.SourceID {
				best = r
			}
		}
	}
	return best
}

// titleSimilarity 标题相似度：词袋 Jaccard 与归一化编辑距离取较大者
// 比较前做折叠：小写、去标点、去冠词/介词等停用词。
func titleSimilarity(a, b string) float64 {
	ta, tb := foldTitle(a), foldTitle(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	jac := tokenJaccard(ta, tb)
	lev := levenshteinRatio(strings.Join(ta, " "), strings.Join(tb, " "))
	if jac > lev {
		return jac
	}
	return lev
}

// 标题折叠时丢弃的停用词（西/英冠词与介词）
var titleStopwords = map[string]struct{}{
	"de": {}, "del": {}, "la": {}, "el": {}, "los": {}, "las": {},
	"y": {}, "en": {}, "a": {}, "al": {}, "con": {}, "para": {}, "por": {},
	"un": {}, "una": {},
	"to": {}, "of": {}, "the": {}, "and": {}, "in": {}, "for": {},
}

func foldTitle(s string) []string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r >= 0x00C0: // 保留重音字母
			sb.WriteRune(r)
		default:
			sb.WriteRune(' ')
		}
	}
	var out []string
	for _, tok := range strings.Fields(sb.String()) {
		if _, stop := titleStopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func tokenJaccard(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}
	inter := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// levenshteinRatio 1 - 编辑距离/较长串长度
func levenshteinRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	dist := levenshtein(ra, rb)
	max := len(ra)
	if len(rb) > max {
		max = len(rb)
	}
	return 1 - float64(dist)/float64(max)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
