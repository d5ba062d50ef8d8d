// Package papers отдает каталог прошлых экзаменационных работ.
package papers

import (
	"fmt"
	"path/filepath"
)

// Any значение фильтра, отключающее условие
const Any = "Any"

// Paper одна работа каталога
type Paper struct {
	Grade   string `json:"grade"`
	Subject string `json:"subject"`
	Term    string `json:"term"`
	File    string `json:"file"`
}

// DownloadName имя файла для скачивания
func (p Paper) DownloadName() string {
	return fmt.Sprintf("%s_%s_%s.pdf", p.Grade, p.Subject, p.Term)
}

// Query фильтр каталога, пустое значение или Any отключают условие
type Query struct {
	Grade   string `form:"grade"`
	Subject string `form:"subject"`
	Term    string `form:"term"`
}

func matches(want, got string) bool {
	return want == "" || want == Any || want == got
}

// Catalog каталог с файлами в корневой папке
type Catalog struct {
	root   string
	papers []Paper
}

// NewCatalog создает каталог поверх встроенного списка
func NewCatalog(root string) *Catalog {
	return &Catalog{root: root, papers: catalog}
}

// Filter возвращает работы в порядке каталога
func (c *Catalog) Filter(q Query) []Paper {
	out := make([]Paper, 0)
	for _, p := range c.papers {
		if matches(q.Grade, p.Grade) && matches(q.Subject, p.Subject) && matches(q.Term, p.Term) {
			out = append(out, p)
		}
	}
	return out
}

// Options значения для фильтров в порядке первого появления
func (c *Catalog) Options() (grades, subjects, terms []string) {
	return distinct(c.papers, func(p Paper) string { return p.Grade }),
		distinct(c.papers, func(p Paper) string { return p.Subject }),
		distinct(c.papers, func(p Paper) string { return p.Term })
}

func distinct(papers []Paper, key func(Paper) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range papers {
		k := key(p)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// Root папка с файлами
func (c *Catalog) Root() string { return c.root }

// Path полный путь к файлу работы
func (c *Catalog) Path(p Paper) string {
	return filepath.Join(c.root, filepath.Base(p.File))
}
