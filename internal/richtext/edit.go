package richtext

import (
	"fmt"
	"slices"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/richinput/internal/flags"
	"github.com/zjrosen/richinput/internal/log"
	"github.com/zjrosen/richinput/internal/textedit"
)

// maxRepairPasses bounds how often the region list is diffed against the
// target text before falling back to unformatted text.
const maxRepairPasses = 3

// EditKind names the shape of a plain text change.
type EditKind int

const (
	EditNone EditKind = iota
	EditReplaceSelection
	EditInsert
	EditBackwardDelete
	EditForwardDelete
	EditWordReplace
	EditUnclassified
)

var editKindNames = map[EditKind]string{
	EditNone:             "none",
	EditReplaceSelection: "replace-selection",
	EditInsert:           "insert",
	EditBackwardDelete:   "backward-delete",
	EditForwardDelete:    "forward-delete",
	EditWordReplace:      "word-replace",
	EditUnclassified:     "unclassified",
}

func (k EditKind) String() string {
	if s, ok := editKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("EditKind(%d)", int(k))
}

// Edit describes a change as a single splice: DeleteAmount runes removed at
// Position, then Inserted placed at Position.
type Edit struct {
	Kind         EditKind
	Position     int
	DeleteAmount int
	Inserted     string

	// WordReplaced is set when characters before the edit point changed too,
	// as autocorrect and predictive text do. OldWord and NewWord are the
	// whitespace-bounded words around Position in the old and new text.
	WordReplaced bool
	OldWord      string
	NewWord      string
}

// Apply returns text with the edit spliced in.
func (e Edit) Apply(text string) string {
	if e.Kind == EditNone || e.Kind == EditUnclassified {
		return text
	}
	return textedit.Replace(text, e.Position, e.Position+e.DeleteAmount, e.Inserted)
}

func (e Edit) String() string {
	return fmt.Sprintf("%s pos=%d delete=%d insert=%q", e.Kind, e.Position, e.DeleteAmount, e.Inserted)
}

// ClassifyEdit compares frame with the last plain text frame and returns the
// splice that explains the change. A candidate splice that does not turn the
// last text into frame.Text is reported as EditUnclassified.
func (p *Processor) ClassifyEdit(frame textedit.Frame) Edit {
	frame = frame.Clamp()
	last := p.lastText
	if frame.Text == last.Text {
		return Edit{Kind: EditNone}
	}

	edit := p.classify(frame, last)
	if edit.Kind != EditUnclassified && edit.Apply(last.Text) != frame.Text {
		log.Debug(log.CatRichText, "Edit candidate rejected", "edit", edit.String())
		return Edit{Kind: EditUnclassified}
	}
	return edit
}

func (p *Processor) classify(frame, last textedit.Frame) Edit {
	newLen := frame.Len()
	lastLen := last.Len()
	caret := frame.SelectionStart
	lastCaret := last.SelectionStart

	wordReplace := p.flags.Enabled(flags.FlagWordReplaceDetection)

	switch {
	case last.HasSelection() && !frame.HasSelection():
		lastSel := last.Normalized()
		selAmount := lastSel.SelectionEnd - lastSel.SelectionStart
		insertAmount := newLen - (lastLen - selAmount)
		if insertAmount > 0 {
			pos := caret - insertAmount
			return Edit{
				Kind:         EditReplaceSelection,
				Position:     pos,
				DeleteAmount: selAmount,
				Inserted:     textedit.Slice(frame.Text, pos, caret),
			}
		}
		return Edit{Kind: EditReplaceSelection, Position: caret, DeleteAmount: selAmount}

	case caret > lastCaret && newLen > lastLen:
		amount := newLen - lastLen
		edit := Edit{
			Kind:     EditInsert,
			Position: lastCaret,
			Inserted: textedit.Slice(frame.Text, lastCaret, lastCaret+amount),
		}
		if wordReplace {
			if wordStart, ok := CheckWordReplaced(frame.Text, last.Text, lastCaret); ok {
				edit.Position = wordStart
				edit.DeleteAmount = lastCaret - wordStart
				edit.Inserted = textedit.Slice(frame.Text, wordStart, lastCaret+amount)
				p.markWordReplaced(&edit, frame.Text, last.Text)
			}
		}
		return edit

	case caret < lastCaret && newLen < lastLen:
		amount := lastLen - newLen
		edit := Edit{Kind: EditBackwardDelete, Position: caret, DeleteAmount: amount}
		if wordReplace {
			if wordStart, ok := CheckWordReplaced(frame.Text, last.Text, caret); ok {
				edit.Position = wordStart
				edit.DeleteAmount = caret - wordStart + amount
				edit.Inserted = textedit.Slice(frame.Text, wordStart, caret)
				p.markWordReplaced(&edit, frame.Text, last.Text)
			}
		}
		return edit

	case caret == lastCaret && newLen < lastLen:
		return Edit{Kind: EditForwardDelete, Position: caret, DeleteAmount: lastLen - newLen}

	case caret == lastCaret && newLen == lastLen && wordReplace:
		if wordStart, ok := CheckWordReplaced(frame.Text, last.Text, caret); ok {
			edit := Edit{
				Kind:         EditWordReplace,
				Position:     wordStart,
				DeleteAmount: caret - wordStart,
				Inserted:     textedit.Slice(frame.Text, wordStart, caret),
			}
			p.markWordReplaced(&edit, frame.Text, last.Text)
			return edit
		}
	}

	return Edit{Kind: EditUnclassified}
}

func (p *Processor) markWordReplaced(edit *Edit, current, last string) {
	edit.WordReplaced = true
	edit.OldWord = wordAt(last, edit.Position)
	edit.NewWord = wordAt(current, edit.Position)
}

func isWordBreak(r rune) bool {
	return r == ' ' || r == '\n'
}

// wordAt returns the whitespace-bounded word that contains pos.
func wordAt(text string, pos int) string {
	rs := []rune(text)
	start := min(max(pos, 0), len(rs))
	for start > 0 && !isWordBreak(rs[start-1]) {
		start--
	}
	end := start
	for end < len(rs) && !isWordBreak(rs[end]) {
		end++
	}
	return string(rs[start:end])
}

// CheckWordReplaced scans backward from pos-1 through the word before pos and
// reports the earliest index where current and last differ. The scan stops at
// a space or newline in either text.
func CheckWordReplaced(current, last string, pos int) (int, bool) {
	cur := []rune(current)
	old := []rune(last)

	found := -1
	for i := pos - 1; i >= 0; i-- {
		if i >= len(cur) || i >= len(old) {
			break
		}
		if isWordBreak(cur[i]) || isWordBreak(old[i]) {
			break
		}
		if cur[i] != old[i] {
			found = i
		}
	}
	return found, found >= 0
}

// ProcessTextEditFrame applies a plain text frame to the document and returns
// the matching rich text frame.
func (p *Processor) ProcessTextEditFrame(frame textedit.Frame) textedit.Frame {
	frame = frame.Clamp()
	last := p.lastText
	rich := textedit.Frame{Text: p.lastRich.Text}

	if frame.Text == last.Text {
		rich.SelectionStart = p.lastRich.SelectionStart
		if frame.SelectionStart != last.SelectionStart {
			rich.SelectionStart = p.DeterminePositionInRichText(frame.SelectionStart)
		}
		rich.SelectionEnd = p.lastRich.SelectionEnd
		if frame.SelectionEnd != last.SelectionEnd {
			rich.SelectionEnd = p.mapSelectionEnd(frame, rich.SelectionStart)
		}
	} else {
		edit := p.ClassifyEdit(frame)
		log.Debug(log.CatRichText, "Classified edit", "edit", edit.String(), "word_replaced", edit.WordReplaced)
		p.ApplyEdit(edit)
		p.repair(frame.Text)

		rich.Text = p.RebuildRichTextString()
		rich.SelectionStart = p.DeterminePositionInRichText(frame.SelectionStart)
		rich.SelectionEnd = p.mapSelectionEnd(frame, rich.SelectionStart)
	}

	p.lastText = frame
	p.lastRich = rich
	return rich
}

func (p *Processor) mapSelectionEnd(frame textedit.Frame, richStart int) int {
	if !frame.HasSelection() {
		return richStart
	}
	return p.DeterminePositionInRichText(frame.SelectionEnd)
}

// ApplyEdit splices edit into the region list. Unclassified edits are left
// to diff repair.
func (p *Processor) ApplyEdit(edit Edit) {
	switch edit.Kind {
	case EditNone, EditUnclassified:
		return
	}
	if edit.DeleteAmount > 0 {
		p.DeleteInText(edit.Position, edit.DeleteAmount)
	}
	if edit.Inserted != "" {
		p.InsertInText(edit.Inserted, edit.Position)
	}
}

// repair reconciles the region list with target when the classified edit
// did not reproduce it exactly.
func (p *Processor) repair(target string) {
	current := p.RebuildTextString()
	if current == target {
		return
	}
	if !p.flags.Enabled(flags.FlagDiffRepair) {
		log.Warn(log.CatRichText, "Region text diverged from input", "want_len", textedit.RuneLen(target), "got_len", textedit.RuneLen(current))
		p.resetPlain(target)
		return
	}

	dmp := diffmatchpatch.New()
	for pass := 1; pass <= maxRepairPasses && current != target; pass++ {
		diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(current, target, false))
		pos := 0
		for _, d := range diffs {
			n := textedit.RuneLen(d.Text)
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				pos += n
			case diffmatchpatch.DiffDelete:
				p.DeleteInText(pos, n)
			case diffmatchpatch.DiffInsert:
				p.InsertInText(d.Text, pos)
				pos += n
			}
		}
		current = p.RebuildTextString()
		log.Debug(log.CatRichText, "Diff repair pass", "pass", pass, "diffs", len(diffs), "converged", current == target)
	}

	if current != target {
		log.Warn(log.CatRichText, "Diff repair failed, dropping formatting", "want_len", textedit.RuneLen(target))
		p.resetPlain(target)
	}
}

// resetPlain replaces the document with unformatted text.
func (p *Processor) resetPlain(text string) {
	p.regions = nil
	p.InsertInText(text, 0)
}

// InsertInText inserts plain text at textPos. Emoji and bindings inside text
// become symbol regions.
func (p *Processor) InsertInText(text string, textPos int) {
	for _, ins := range p.ParseTextRegions(text) {
		p.insertRegion(ins, textPos)
		textPos += ins.Len()
	}
}

func (p *Processor) insertRegion(ins *TextRegion, textPos int) {
	textOffset, prevOffset := 0, 0
	for ri, region := range p.regions {
		within, startOfRegion := region.PositionWithinRegion(textOffset, textPos)
		if !within {
			prevOffset = textOffset
			textOffset += region.Len()
			continue
		}

		switch {
		case startOfRegion && ri == 0:
			p.insertStandalone(0, ins, nil)
		case startOfRegion:
			prev := p.regions[ri-1]
			if prev.IsSymbol || ins.IsSymbol {
				p.insertStandalone(ri, ins, lastRun(prev))
			} else {
				prev.tryInsert(ins.Content(), prevOffset, textPos)
			}
		case region.IsSymbol:
			var tags *RichTextRegion
			if ri > 0 {
				tags = lastRun(p.regions[ri-1])
			}
			p.insertStandalone(ri, ins, tags)
		case ins.IsSymbol:
			left, right, ok := region.splitAt(textOffset, textPos)
			if !ok {
				return
			}
			p.configureStandalone(ins, lastRun(left))
			p.regions = slices.Replace(p.regions, ri, ri+1, left, ins, right)
		default:
			region.tryInsert(ins.Content(), textOffset, textPos)
		}
		return
	}

	if len(p.regions) == 0 {
		p.insertStandalone(0, ins, nil)
		return
	}
	prev := p.regions[len(p.regions)-1]
	if prev.IsSymbol || ins.IsSymbol {
		p.insertStandalone(len(p.regions), ins, lastRun(prev))
		return
	}
	prev.tryInsert(ins.Content(), prevOffset, textPos)
}

func (p *Processor) insertStandalone(index int, ins *TextRegion, tags *RichTextRegion) {
	p.configureStandalone(ins, tags)
	p.regions = slices.Insert(p.regions, index, ins)
}

func (p *Processor) configureStandalone(ins *TextRegion, tags *RichTextRegion) {
	run := NewRichTextRegion(ins.Content(), nil, nil)
	if tags != nil {
		run.CopyTags(tags)
	}
	ins.RichTextRegions = []*RichTextRegion{run}
	if ins.IsSymbol {
		ins.configureSymbol(p.emojis, p.bindings)
	}
}

func lastRun(r *TextRegion) *RichTextRegion {
	if r == nil || len(r.RichTextRegions) == 0 {
		return nil
	}
	return r.RichTextRegions[len(r.RichTextRegions)-1]
}

// DeleteInText deletes amount runes starting at textPos. Touching any rune of
// a symbol removes the whole symbol.
func (p *Processor) DeleteInText(textPos, amount int) {
	textOffset := 0
	for i := 0; i < len(p.regions) && amount > 0; {
		region := p.regions[i]
		consumed, ok := region.tryDelete(textOffset, textPos, amount)
		if !ok {
			textOffset += region.Len()
			i++
			continue
		}
		amount -= consumed
		if region.Len() == 0 {
			p.regions = slices.Delete(p.regions, i, i+1)
		}
	}
}
