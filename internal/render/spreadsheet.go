package render

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/codi-diyt/actividades/internal/model"
)

// SpreadsheetRenderer 工作簿（xlsx）渲染器
// 手工拼装最小 OOXML：一个汇总页加每个有产出类别的分布页。
// zip 条目使用固定时间戳，保证相同报告产出逐字节相同的文件。
type SpreadsheetRenderer struct{}

func (r *SpreadsheetRenderer) Format() model.OutputFormat { return model.FormatSpreadsheet }

// zipEpoch 所有 zip 条目的固定修改时间
var zipEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

func (r *SpreadsheetRenderer) Render(report *model.Report) (model.Artifact, error) {
	if err := validateReportData(report); err != nil {
		return model.Artifact{}, err
	}

	snap := report.Snapshot

	type sheet struct {
		name string
		xml  string
	}
	sheets := []sheet{{name: "Resumen", xml: summarySheet(report)}}
	for _, c := range model.AllCategories() {
		m := snap.Category(c)
		if m.Count == 0 {
			continue
		}
		sheets = append(sheets, sheet{name: sheetName(c), xml: categorySheet(c, m)})
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name, content string) error {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: zipEpoch,
		})
		if err != nil {
			return err
		}
		_, err = w.Write([]byte(content))
		return err
	}

	var types, rels, defs strings.Builder
	for i := range sheets {
		fmt.Fprintf(&types,
			`<Override PartName="/xl/worksheets/sheet%d.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>`,
			i+1)
		fmt.Fprintf(&rels,
			`<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet%d.xml"/>`,
			i+1, i+1)
		fmt.Fprintf(&defs, `<sheet name="%s" sheetId="%d" r:id="rId%d"/>`, xmlEscape(sheets[i].name), i+1, i+1)
	}

	parts := []struct{ name, content string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>` +
			types.String() + `</Types>`},
		{"_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>` +
			`</Relationships>`},
		{"xl/workbook.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
			`<sheets>` + defs.String() + `</sheets></workbook>`},
		{"xl/_rels/workbook.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			rels.String() + `</Relationships>`},
	}
	for _, p := range parts {
		if err := write(p.name, p.content); err != nil {
			return model.Artifact{}, fmt.Errorf("写入 %s 失败: %w", p.name, err)
		}
	}
	for i, s := range sheets {
		name := fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1)
		if err := write(name, s.xml); err != nil {
			return model.Artifact{}, fmt.Errorf("写入 %s 失败: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return model.Artifact{}, fmt.Errorf("关闭工作簿失败: %w", err)
	}

	return model.Artifact{
		Format:   model.FormatSpreadsheet,
		Filename: baseFilename(report.Request) + ".xlsx",
		MIME:     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:  buf.Bytes(),
	}, nil
}

// summarySheet 汇总页：每类别一行，末行 TOTAL 必须等于分布页之和
func summarySheet(report *model.Report) string {
	snap := report.Snapshot
	var rows strings.Builder
	rows.WriteString(rowXML(cellStr(report.Narrative.Title)))
	rows.WriteString(rowXML(cellStr("Categoría"), cellStr("Total"), cellStr("Horas")))
	totalCount, totalHours := 0, 0
	for _, c := range model.AllCategories() {
		m := snap.Category(c)
		rows.WriteString(rowXML(cellStr(c.DisplayName()), cellNum(m.Count), cellNum(m.Hours)))
		totalCount += m.Count
		totalHours += m.Hours
	}
	rows.WriteString(rowXML(cellStr("TOTAL"), cellNum(totalCount), cellNum(totalHours)))
	rows.WriteString(rowXML(cellStr("Docentes participantes"), cellNum(snap.TotalDocentes)))
	for _, k := range snap.MonthKeys() {
		rows.WriteString(rowXML(cellStr("Mes "+k), cellNum(snap.Monthly[k])))
	}
	return worksheetXML(rows.String())
}

// categorySheet 单类别分布页：每个统计桶一行
func categorySheet(c model.Category, m model.CategoryMetrics) string {
	var rows strings.Builder
	rows.WriteString(rowXML(cellStr("Estado"), cellStr("Cantidad")))
	for _, k := range m.BucketKeys() {
		rows.WriteString(rowXML(cellStr(k), cellNum(m.Buckets[k])))
	}
	rows.WriteString(rowXML(cellStr("TOTAL"), cellNum(m.BucketTotal())))
	return worksheetXML(rows.String())
}

// sheetName 工作表名（xlsx 限 31 字符）
func sheetName(c model.Category) string {
	name := c.DisplayName()
	if len([]rune(name)) > 31 {
		name = string([]rune(name)[:31])
	}
	return name
}

func worksheetXML(rows string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">` +
		`<sheetData>` + rows + `</sheetData></worksheet>`
}

func rowXML(cells ...string) string {
	return "<row>" + strings.Join(cells, "") + "</row>"
}

// cellStr 内联字符串单元格（避免共享字符串表，保持部件自包含）
func cellStr(s string) string {
	return `<c t="inlineStr"><is><t>` + xmlEscape(s) + `</t></is></c>`
}

func cellNum(n int) string {
	return fmt.Sprintf("<c><v>%d</v></c>", n)
}
