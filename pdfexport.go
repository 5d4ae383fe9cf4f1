package learnpath

import (
	"embed"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/net/html"
)

// PageOptions sets the paper size and margin of exported documents
type PageOptions struct {
	Size     string  // fpdf size name, e.g. "A3", "A4"
	MarginMM float64 // applied to every side
}

// DefaultPageOptions is the layout used for module downloads
var DefaultPageOptions = PageOptions{Size: "A3", MarginMM: 10}

type blockStyle int

const (
	styleBody blockStyle = iota
	styleHeading
	stylePre
)

type pdfBlock struct {
	style blockStyle
	text  string
}

// Unicode fonts for exported documents. The core PDF fonts only cover cp1252,
// which loses box drawing characters in diagrams.
//
//go:embed fonts/DejaVuSans.ttf fonts/DejaVuSans-Bold.ttf fonts/DejaVuSansMono.ttf
var fontFS embed.FS

const (
	sansFamily = "DejaVuSans"
	monoFamily = "DejaVuSansMono"
)

// RenderPDF lays out an HTML fragment as a paginated PDF document
func RenderPDF(w io.Writer, htmlDoc string, opts PageOptions) error {
	pdf, err := layoutPDF(htmlDoc, opts)
	if err != nil {
		return err
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

func layoutPDF(htmlDoc string, opts PageOptions) (*fpdf.Fpdf, error) {
	if opts.Size == "" {
		opts = DefaultPageOptions
	}

	blocks, err := htmlBlocks(htmlDoc)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", opts.Size, "")
	if err := addFonts(pdf); err != nil {
		return nil, err
	}
	pdf.SetMargins(opts.MarginMM, opts.MarginMM, opts.MarginMM)
	pdf.SetAutoPageBreak(true, opts.MarginMM)
	pdf.AddPage()

	for _, block := range blocks {
		switch block.style {
		case styleHeading:
			pdf.SetFont(sansFamily, "B", 15)
			pdf.MultiCell(0, 8, block.text, "", "L", false)
		case stylePre:
			pdf.SetFont(monoFamily, "", 9)
			pdf.MultiCell(0, 4.5, block.text, "", "L", false)
		default:
			pdf.SetFont(sansFamily, "", 11)
			pdf.MultiCell(0, 6, block.text, "", "L", false)
		}
		pdf.Ln(2)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to lay out pdf: %w", err)
	}
	return pdf, nil
}

func addFonts(pdf *fpdf.Fpdf) error {
	fonts := []struct {
		family, style, file string
	}{
		{sansFamily, "", "fonts/DejaVuSans.ttf"},
		{sansFamily, "B", "fonts/DejaVuSans-Bold.ttf"},
		{monoFamily, "", "fonts/DejaVuSansMono.ttf"},
	}

	for _, font := range fonts {
		data, err := fontFS.ReadFile(font.file)
		if err != nil {
			return fmt.Errorf("failed to read font %s: %w", font.file, err)
		}
		pdf.AddUTF8FontFromBytes(font.family, font.style, data)
	}
	return pdf.Error()
}

// htmlBlocks flattens HTML into paragraphs, headings and preformatted blocks
func htmlBlocks(htmlDoc string) ([]pdfBlock, error) {
	var (
		blocks []pdfBlock
		buf    strings.Builder
		style  = styleBody
		inPre  bool
		bullet bool
	)

	flush := func() {
		text := buf.String()
		buf.Reset()
		if style == stylePre {
			text = strings.Trim(text, "\n")
		} else {
			text = strings.Join(strings.Fields(text), " ")
		}
		if strings.TrimSpace(text) == "" {
			return
		}
		if bullet {
			text = "- " + text
			bullet = false
		}
		blocks = append(blocks, pdfBlock{style: style, text: text})
	}

	z := html.NewTokenizer(strings.NewReader(htmlDoc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				flush()
				return blocks, nil
			}
			return nil, fmt.Errorf("failed to parse html: %w", z.Err())

		case html.TextToken:
			buf.Write(z.Text())

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch tag := string(name); tag {
			case "h1", "h2", "h3", "h4", "h5", "h6":
				flush()
				style = styleHeading
			case "p", "div", "ul", "ol", "blockquote", "table", "tr", "hr":
				flush()
			case "li":
				flush()
				bullet = true
			case "pre":
				flush()
				style = stylePre
				inPre = true
			case "br":
				if inPre {
					buf.WriteString("\n")
				} else {
					flush()
				}
			case "td", "th":
				buf.WriteString(" ")
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "h1", "h2", "h3", "h4", "h5", "h6", "p", "li", "div", "blockquote", "tr":
				flush()
				if !inPre {
					style = styleBody
				}
			case "pre":
				flush()
				inPre = false
				style = styleBody
			}
		}
	}
}
