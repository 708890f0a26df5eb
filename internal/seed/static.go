// ABOUTME: Static fallback records when no OpenAI API key is available.
// ABOUTME: Derives values from each field's key, kind, and bounds.

package seed

import (
	"fmt"

	"github.com/2389/joinlab/internal/resource"
)

var (
	fullnames = []string{
		"Alice Chen", "Bob Martinez", "Sarah Johnson", "Dave Wilson", "Jenna Taylor",
		"Mike Brown", "Alex Rivera", "Emma Davis", "Chris Lee", "Jane Kim",
		"Peter Zhang", "Grace Hopper", "Ada Lovelace", "Alan Turing", "Barbara Liskov",
	}
	deptNames = []string{
		"Computer Science", "Mathematics", "Physics", "Chemistry", "Biology",
		"History", "Economics", "Philosophy", "Linguistics", "Music",
	}
	courseTitles = []string{
		"Intro to Programming", "Linear Algebra", "Classical Mechanics", "Organic Chemistry",
		"Cell Biology", "Modern History", "Microeconomics", "Logic", "Phonetics", "Harmony",
		"Data Structures", "Calculus II", "Quantum Physics", "Databases", "Operating Systems",
	}
	buildings = []string{"Main", "North Hall", "Science Center", "Library", "Annex"}
	semesters = []string{"Fall 2024", "Spring 2025", "Summer 2025", "Fall 2025"}
	dayNames  = []string{"Mon", "Tue", "Wed", "Thu", "Fri"}
)

// StaticRecords returns count records for schema. Row i references
// related records by ids in 1..count, so seeding every resource with the
// same count keeps references resolvable.
func StaticRecords(schema resource.Schema, count int) []resource.Record {
	records := make([]resource.Record, count)
	for i := range records {
		rec := make(resource.Record, len(schema.Fields))
		for _, f := range schema.Fields {
			rec[f.Key] = staticValue(f, i, count)
		}
		records[i] = rec
	}
	return records
}

func staticValue(f resource.Field, i, count int) any {
	switch f.Kind {
	case resource.KindNumber:
		return staticNumber(f, i, count)
	case resource.KindTime:
		return staticTime(f.Key, i)
	default:
		return staticText(f, i)
	}
}

func staticNumber(f resource.Field, i, count int) any {
	if f.Min != nil && f.Max != nil {
		lo, hi := int64(*f.Min), int64(*f.Max)
		return lo + int64(i)%(hi-lo+1)
	}
	// Optional references are left empty on every third row.
	if !f.Required && i%3 == 2 {
		return nil
	}
	return int64(i%count) + 1
}

// staticTime spreads rows over the teaching day. Keys starting with "end"
// get the hour after the matching start.
func staticTime(key string, i int) string {
	hour := 8 + i%9
	if len(key) >= 3 && key[:3] == "end" {
		hour++
	}
	return fmt.Sprintf("%02d:00", hour)
}

func staticText(f resource.Field, i int) string {
	switch f.Key {
	case "fullname":
		return pick(fullnames, i)
	case "name":
		return pick(deptNames, i)
	case "title":
		return pick(courseTitles, i)
	case "building":
		return pick(buildings, i)
	case "room_num":
		return fmt.Sprintf("%d", 101+i)
	case "semester":
		return pick(semesters, i)
	case "day_name":
		return pick(dayNames, i)
	}
	return fmt.Sprintf("%s %d", f.Label, i+1)
}

// pick cycles through values, suffixing a round number once they repeat.
func pick(values []string, i int) string {
	v := values[i%len(values)]
	if round := i / len(values); round > 0 {
		return fmt.Sprintf("%s %d", v, round+1)
	}
	return v
}
