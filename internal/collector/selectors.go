package collector

// Selectors 结果页的全部结构标记集中在这里。
// 页面结构调整时只需要改这一处，或通过 SELECTORS_FILE 覆盖。
type Selectors struct {
	// Block 单条结果的容器
	Block string `yaml:"block"`
	// Link 结果块内的标题链接
	Link string `yaml:"link"`
	// LabelledLink 链接文本为空时，带无障碍标签的链接
	LabelledLink string `yaml:"labelled_link"`
	LabelAttr    string `yaml:"label_attr"`
	// Publisher 来源名所在的元素（类名随站点构建变化）
	Publisher string `yaml:"publisher"`
	// PublisherMarker 来源元素上的数据标记，类名失效时兜底
	PublisherMarker string `yaml:"publisher_marker"`
	Time            string `yaml:"time"`
	TimeAttr        string `yaml:"time_attr"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		Block:           "article",
		Link:            "a[href]",
		LabelledLink:    "a[aria-label]",
		LabelAttr:       "aria-label",
		Publisher:       ".vr1PYe",
		PublisherMarker: "[data-n-tid]",
		Time:            "time",
		TimeAttr:        "datetime",
	}
}

// Merge 用 o 中的非空字段覆盖 s
func (s Selectors) Merge(o Selectors) Selectors {
	pick := func(cur, override string) string {
		if override != "" {
			return override
		}
		return cur
	}
	return Selectors{
		Block:           pick(s.Block, o.Block),
		Link:            pick(s.Link, o.Link),
		LabelledLink:    pick(s.LabelledLink, o.LabelledLink),
		LabelAttr:       pick(s.LabelAttr, o.LabelAttr),
		Publisher:       pick(s.Publisher, o.Publisher),
		PublisherMarker: pick(s.PublisherMarker, o.PublisherMarker),
		Time:            pick(s.Time, o.Time),
		TimeAttr:        pick(s.TimeAttr, o.TimeAttr),
	}
}
