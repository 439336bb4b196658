package category

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Reserved category labels. The last two record a fetch outcome rather than
// a topic and are never overwritten by keyword matching.
const (
	Uncategorized = "uncategorized"
	NoDomain      = "no domain"
	NoTitleFound  = "no title found"
	FetchFailed   = "fetch failed"
)

// IsSticky reports whether label is a fetch-outcome sentinel.
func IsSticky(label string) bool {
	return label == NoTitleFound || label == FetchFailed
}

// Category is one labelled keyword list.
type Category struct {
	Name     string
	Keywords []string
}

// Table is an ordered category table. Order decides precedence when a text
// matches keywords from more than one category.
//
// It encodes to and decodes from a JSON object whose key order is kept.
type Table []Category

// defaultTable is the built-in table shared by every strategy.
var defaultTable = Table{
	{Name: "tech", Keywords: []string{"github", "gitlab", "csdn", "stackoverflow", "python", "java", "编程", "开发", "技术", "代码", "gitee", "v2ex", "segmentfault"}},
	{Name: "entertainment", Keywords: []string{"bilibili", "b站", "acfun", "抖音", "快手", "音乐", "视频", "娱乐", "游戏", "动漫"}},
	{Name: "learning", Keywords: []string{"mooc", "慕课", "coursera", "edx", "学习", "教程", "w3school", "edu", "大学", "知乎", "wikipedia", "百科"}},
	{Name: "news", Keywords: []string{"news", "新闻", "头条", "网易", "新浪", "搜狐", "腾讯", "bbc", "cnn", "日报", "报纸"}},
	{Name: "shopping", Keywords: []string{"淘宝", "京东", "拼多多", "购物", "商城", "亚马逊", "aliexpress", "ebay"}},
	{Name: "life", Keywords: []string{"美食", "健康", "旅游", "出行", "天气", "生活", "家居", "房产", "汽车"}},
	{Name: "social", Keywords: []string{"微博", "微信", "qq", "facebook", "twitter", "instagram", "社交", "论坛", "社区"}},
}

// Default returns a copy of the built-in category table.
func Default() Table {
	return defaultTable.Clone()
}

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for i, c := range t {
		out[i] = Category{Name: c.Name, Keywords: append([]string(nil), c.Keywords...)}
	}
	return out
}

// Names returns the category labels in table order.
func (t Table) Names() []string {
	names := make([]string, len(t))
	for i, c := range t {
		names[i] = c.Name
	}
	return names
}

// Merge returns t with overrides applied on top. An override for an existing
// label replaces its keyword list in place; a new label is appended. Keyword
// lists are never merged.
func (t Table) Merge(overrides Table) Table {
	out := t.Clone()
	index := make(map[string]int, len(out))
	for i, c := range out {
		index[c.Name] = i
	}
	for _, c := range overrides {
		kws := append([]string(nil), c.Keywords...)
		if i, ok := index[c.Name]; ok {
			out[i].Keywords = kws
			continue
		}
		index[c.Name] = len(out)
		out = append(out, Category{Name: c.Name, Keywords: kws})
	}
	return out
}

// set assigns keywords to name, keeping the first position of a repeated key.
func (t *Table) set(name string, keywords []string) {
	for i := range *t {
		if (*t)[i].Name == name {
			(*t)[i].Keywords = keywords
			return
		}
	}
	*t = append(*t, Category{Name: name, Keywords: keywords})
}

// UnmarshalJSON decodes a JSON object of label -> keyword array, keeping the
// object's key order.
func (t *Table) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("category: decode table: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("category: decode table: expected object, got %v", tok)
	}

	table := Table{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("category: decode table: %w", err)
		}
		name, _ := keyTok.(string)

		var keywords []string
		if err := dec.Decode(&keywords); err != nil {
			return fmt.Errorf("category: decode keywords for %q: %w", name, err)
		}
		table.set(name, keywords)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("category: decode table: %w", err)
	}

	*t = table
	return nil
}

// MarshalJSON encodes t as a JSON object in table order.
func (t Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		kws := c.Keywords
		if kws == nil {
			kws = []string{}
		}
		val, err := json.Marshal(kws)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML decodes a YAML mapping of label -> keyword sequence in
// document order.
func (t *Table) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("category: line %d: expected a mapping of category -> keywords", node.Line)
	}

	table := Table{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var keywords []string
		if err := node.Content[i+1].Decode(&keywords); err != nil {
			return fmt.Errorf("category: keywords for %q: %w", name, err)
		}
		table.set(name, keywords)
	}
	*t = table
	return nil
}

// LoadFile reads an override table from a YAML file.
//
//	tech: [golang, rust]
//	recipes:
//	  - cooking
//	  - 菜谱
func LoadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("category: read %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return Table{}, nil
	}

	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("category: parse %s: %w", path, err)
	}
	return t, nil
}
