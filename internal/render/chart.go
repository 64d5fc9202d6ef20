package render

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
)

// barChartPNG 画一组数值的柱状图并编码为 PNG
// 图内不写文字（避免字体依赖），标签由外层 HTML 负责。
func barChartPNG(values []int, width, height int) ([]byte, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("没有可绘制的数值")
	}

	maxVal := 1
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	const margin = 10.0
	plotW := float64(width) - 2*margin
	plotH := float64(height) - 2*margin
	slot := plotW / float64(len(values))
	barW := slot * 0.7

	dc.SetRGB(0.18, 0.35, 0.58)
	for i, v := range values {
		h := plotH * float64(v) / float64(maxVal)
		x := margin + float64(i)*slot + (slot-barW)/2
		y := margin + plotH - h
		dc.DrawRectangle(x, y, barW, h)
		dc.Fill()
	}

	// 基线
	dc.SetRGB(0.3, 0.3, 0.3)
	dc.SetLineWidth(1)
	dc.DrawLine(margin, margin+plotH, margin+plotW, margin+plotH)
	dc.Stroke()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}
