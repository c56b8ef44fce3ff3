package deck

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/punchamoorthee/deckops/internal/models"
)

// Slide geometry, in EMU (914400 per inch). The deck is 10 x 7.5 inches.
const (
	slideWidthEMU  = 9144000
	slideHeightEMU = 6858000

	titleOffXEMU = 457200  // 0.5"
	titleOffYEMU = 457200  // 0.5"
	titleExtXEMU = 8229600 // 9"
	titleExtYEMU = 1097280 // 1.2"

	bodyOffXEMU = 731520  // 0.8"
	bodyOffYEMU = 1828800 // 2"
	bodyExtXEMU = 7680960 // 8.4"
	bodyExtYEMU = 4114800 // 4.5"
)

// PPTX writes presentations as OOXML packages with hand-built parts: one
// blank-layout slide per generated slide, with the selected template preview
// stretched across the background. No external presentation library backs
// this; the package structure is the fixed minimal set PowerPoint accepts.
type PPTX struct {
	outputDir string
	catalog   *Catalog
}

func NewPPTX(outputDir string, catalog *Catalog) *PPTX {
	return &PPTX{outputDir: outputDir, catalog: catalog}
}

func (p *PPTX) Render(ctx context.Context, topic, author string, slides []models.Slide, templateID int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(slides) == 0 {
		return "", fmt.Errorf("%w: no slides to render", ErrRender)
	}

	// A missing preview image degrades to a plain background, matching the
	// catalog-miss behavior of template browsing.
	var background []byte
	if path, err := p.catalog.PreviewPath(templateID); err == nil {
		if data, readErr := os.ReadFile(path); readErr == nil {
			background = data
		}
	} else if !errors.Is(err, ErrTemplateMissing) {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}

	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}

	name := fmt.Sprintf("%s-%s.pptx", sanitizeFilename(topic), uuid.NewString()[:8])
	outPath := filepath.Join(p.outputDir, name)

	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}

	if err := writePackage(out, topic, author, slides, background); err != nil {
		out.Close()
		os.Remove(outPath)
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return outPath, nil
}

func writePackage(w *os.File, topic, author string, slides []models.Slide, background []byte) error {
	zw := zip.NewWriter(w)

	parts := []struct {
		name string
		data string
	}{
		{"[Content_Types].xml", contentTypesXML(len(slides), background != nil)},
		{"_rels/.rels", rootRelsXML},
		{"docProps/core.xml", coreXML(topic, author)},
		{"ppt/presentation.xml", presentationXML(len(slides))},
		{"ppt/_rels/presentation.xml.rels", presentationRelsXML(len(slides))},
		{"ppt/slideMasters/slideMaster1.xml", slideMasterXML},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRelsXML},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayoutXML},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRelsXML},
		{"ppt/theme/theme1.xml", themeXML},
	}
	for i, s := range slides {
		n := i + 1
		parts = append(parts,
			struct {
				name string
				data string
			}{fmt.Sprintf("ppt/slides/slide%d.xml", n), slideXML(s, background != nil)},
			struct {
				name string
				data string
			}{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), slideRelsXML(background != nil)},
		)
	}

	for _, part := range parts {
		f, err := zw.Create(part.name)
		if err != nil {
			return err
		}
		if _, err := f.Write([]byte(part.data)); err != nil {
			return err
		}
	}

	if background != nil {
		f, err := zw.Create("ppt/media/image1.png")
		if err != nil {
			return err
		}
		if _, err := f.Write(background); err != nil {
			return err
		}
	}

	return zw.Close()
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

func contentTypesXML(slideCount int, hasImage bool) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	if hasImage {
		b.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	}
	b.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i)
	}
	b.WriteString(`</Types>`)
	return b.String()
}

const rootRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`</Relationships>`

func coreXML(topic, author string) string {
	return xmlHeader +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">` +
		`<dc:title>` + escapeXML(topic) + `</dc:title>` +
		`<dc:creator>` + escapeXML(author) + `</dc:creator>` +
		`</cp:coreProperties>`
}

func presentationXML(slideCount int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:presentation xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:sldIdLst>`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 255+i, i+1)
	}
	b.WriteString(`</p:sldIdLst>`)
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d"/>`, slideWidthEMU, slideHeightEMU)
	fmt.Fprintf(&b, `<p:notesSz cx="%d" cy="%d"/>`, slideHeightEMU, slideWidthEMU)
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func presentationRelsXML(slideCount int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, i+1, i)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

const slideMasterXML = xmlHeader +
	`<p:sldMaster xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">` +
	`<p:cSld><p:spTree>` +
	`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr/>` +
	`</p:spTree></p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` +
	`</p:sldMaster>`

const slideMasterRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme" Target="../theme/theme1.xml"/>` +
	`</Relationships>`

// Blank layout, matching layout index 6 of a default deck.
const slideLayoutXML = xmlHeader +
	`<p:sldLayout xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" type="blank">` +
	`<p:cSld name="Blank"><p:spTree>` +
	`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr/>` +
	`</p:spTree></p:cSld>` +
	`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>` +
	`</p:sldLayout>`

const slideLayoutRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="../slideMasters/slideMaster1.xml"/>` +
	`</Relationships>`

const themeXML = xmlHeader +
	`<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Office">` +
	`<a:themeElements>` +
	`<a:clrScheme name="Office">` +
	`<a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1>` +
	`<a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1>` +
	`<a:dk2><a:srgbClr val="44546A"/></a:dk2>` +
	`<a:lt2><a:srgbClr val="E7E6E6"/></a:lt2>` +
	`<a:accent1><a:srgbClr val="4472C4"/></a:accent1>` +
	`<a:accent2><a:srgbClr val="ED7D31"/></a:accent2>` +
	`<a:accent3><a:srgbClr val="A5A5A5"/></a:accent3>` +
	`<a:accent4><a:srgbClr val="FFC000"/></a:accent4>` +
	`<a:accent5><a:srgbClr val="5B9BD5"/></a:accent5>` +
	`<a:accent6><a:srgbClr val="70AD47"/></a:accent6>` +
	`<a:hlink><a:srgbClr val="0563C1"/></a:hlink>` +
	`<a:folHlink><a:srgbClr val="954F72"/></a:folHlink>` +
	`</a:clrScheme>` +
	`<a:fontScheme name="Office">` +
	`<a:majorFont><a:latin typeface="Calibri Light"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>` +
	`<a:minorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>` +
	`</a:fontScheme>` +
	`<a:fmtScheme name="Office">` +
	`<a:fillStyleLst>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`</a:fillStyleLst>` +
	`<a:lnStyleLst>` +
	`<a:ln w="6350"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>` +
	`<a:ln w="12700"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>` +
	`<a:ln w="19050"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>` +
	`</a:lnStyleLst>` +
	`<a:effectStyleLst>` +
	`<a:effectStyle><a:effectLst/></a:effectStyle>` +
	`<a:effectStyle><a:effectLst/></a:effectStyle>` +
	`<a:effectStyle><a:effectLst/></a:effectStyle>` +
	`</a:effectStyleLst>` +
	`<a:bgFillStyleLst>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`</a:bgFillStyleLst>` +
	`</a:fmtScheme>` +
	`</a:themeElements>` +
	`</a:theme>`

func slideXML(s models.Slide, hasImage bool) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	b.WriteString(`<p:cSld><p:spTree>`)
	b.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`)
	b.WriteString(`<p:grpSpPr/>`)

	if hasImage {
		// Background first so the text shapes stack above it.
		fmt.Fprintf(&b,
			`<p:pic><p:nvPicPr><p:cNvPr id="2" name="Background"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>`+
				`<p:blipFill><a:blip r:embed="rId2"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`+
				`<p:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
				`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`,
			slideWidthEMU, slideHeightEMU)
	}

	b.WriteString(textShape(3, "Title", titleOffXEMU, titleOffYEMU, titleExtXEMU, titleExtYEMU,
		s.Title, 3200, true, "ctr"))
	if s.Content != "" {
		b.WriteString(textShape(4, "Content", bodyOffXEMU, bodyOffYEMU, bodyExtXEMU, bodyExtYEMU,
			s.Content, bodyFontSize(s.Content), false, "l"))
	}

	b.WriteString(`</p:spTree></p:cSld>`)
	b.WriteString(`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`)
	b.WriteString(`</p:sld>`)
	return b.String()
}

// bodyFontSize shrinks the body font as the text grows, in hundredths of a
// point: 18pt normally, 16pt past 300 characters, 14pt past 500.
func bodyFontSize(content string) int {
	switch n := len([]rune(content)); {
	case n > 500:
		return 1400
	case n > 300:
		return 1600
	default:
		return 1800
	}
}

func textShape(id int, name string, offX, offY, extX, extY int, text string, size int, bold bool, align string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, name)
	fmt.Fprintf(&b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, offX, offY, extX, extY)
	b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`)
	b.WriteString(`<p:txBody><a:bodyPr wrap="square"/><a:lstStyle/>`)

	boldAttr := "0"
	if bold {
		boldAttr = "1"
	}
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(&b, `<a:p><a:pPr algn="%s"/>`, align)
		if line != "" {
			fmt.Fprintf(&b,
				`<a:r><a:rPr lang="en-US" sz="%d" b="%s"><a:solidFill><a:srgbClr val="FFFFFF"/></a:solidFill></a:rPr><a:t>%s</a:t></a:r>`,
				size, boldAttr, escapeXML(line))
		}
		b.WriteString(`</a:p>`)
	}
	b.WriteString(`</p:txBody></p:sp>`)
	return b.String()
}

func slideRelsXML(hasImage bool) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>`)
	if hasImage {
		b.WriteString(`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/image1.png"/>`)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func escapeXML(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return ""
	}
	return b.String()
}
