// ABOUTME: Registry of resource schemas keyed by name.
// ABOUTME: Holds the built-in university tables and their tab order.

package resource

import "fmt"

// Registry is an ordered, immutable set of schemas.
type Registry struct {
	order   []string
	schemas map[string]Schema
	def     string
}

// NewRegistry builds a registry from schemas in tab order. The first schema
// is the default tab unless SetDefault is called.
func NewRegistry(schemas ...Schema) (*Registry, error) {
	if len(schemas) == 0 {
		return nil, fmt.Errorf("registry needs at least one schema")
	}
	r := &Registry{schemas: make(map[string]Schema, len(schemas))}
	for _, s := range schemas {
		if s.Name == "" || s.Path == "" || s.ID == "" {
			return nil, fmt.Errorf("schema %q: name, path, and id are required", s.Name)
		}
		if _, exists := r.schemas[s.Name]; exists {
			return nil, fmt.Errorf("schema %q already registered", s.Name)
		}
		if _, editable := s.FieldByKey(s.ID); editable {
			return nil, fmt.Errorf("schema %q: identifier %q must not be a form field", s.Name, s.ID)
		}
		r.schemas[s.Name] = s
		r.order = append(r.order, s.Name)
	}
	r.def = r.order[0]
	return r, nil
}

// SetDefault changes the tab selected when none is given.
func (r *Registry) SetDefault(name string) error {
	if _, ok := r.schemas[name]; !ok {
		return fmt.Errorf("unknown resource %q", name)
	}
	r.def = name
	return nil
}

// Default returns the name of the default tab.
func (r *Registry) Default() string {
	return r.def
}

// Get retrieves a schema by resource name.
func (r *Registry) Get(name string) (Schema, bool) {
	s, ok := r.schemas[name]
	return s, ok
}

// Names returns resource names in tab order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// All returns schemas in tab order.
func (r *Registry) All() []Schema {
	out := make([]Schema, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.schemas[name])
	}
	return out
}

// Builtin returns the registry of university tables, with "student" as
// the default tab.
func Builtin() *Registry {
	r, err := NewRegistry(builtinSchemas()...)
	if err != nil {
		panic(err)
	}
	if err := r.SetDefault("student"); err != nil {
		panic(err)
	}
	return r
}

func builtinSchemas() []Schema {
	idCol := func(key string) Column { return Column{Key: key, Label: "ID", Width: "w-16"} }

	return []Schema{
		{
			Name: "dept", Label: "Departments", Path: "dept", ID: "dept_id",
			Columns: []Column{idCol("dept_id"), {Key: "name", Label: "Name"}},
			Fields: []Field{
				{Key: "name", Label: "Name", Kind: KindText, Required: true},
			},
		},
		{
			Name: "student", Label: "Students", Path: "student", ID: "student_id",
			Columns: []Column{
				idCol("student_id"),
				{Key: "fullname", Label: "Full name"},
				{Key: "year_num", Label: "Year"},
				{Key: "dept_id", Label: "Dept"},
			},
			Fields: []Field{
				{Key: "fullname", Label: "Full name", Kind: KindText, Required: true},
				{Key: "year_num", Label: "Year (1-4)", Kind: KindNumber, Required: true, Min: bound(1), Max: bound(4)},
				{Key: "dept_id", Label: "Dept ID (nullable)", Kind: KindNumber},
			},
		},
		{
			Name: "teacher", Label: "Teachers", Path: "teacher", ID: "teacher_id",
			Columns: []Column{
				idCol("teacher_id"),
				{Key: "fullname", Label: "Full name"},
				{Key: "dept_id", Label: "Dept"},
			},
			Fields: []Field{
				{Key: "fullname", Label: "Full name", Kind: KindText, Required: true},
				{Key: "dept_id", Label: "Dept ID", Kind: KindNumber, Required: true},
			},
		},
		{
			Name: "course", Label: "Courses", Path: "course", ID: "course_id",
			Columns: []Column{
				idCol("course_id"),
				{Key: "title", Label: "Title"},
				{Key: "credits", Label: "Credits"},
				{Key: "dept_id", Label: "Dept"},
			},
			Fields: []Field{
				{Key: "title", Label: "Title", Kind: KindText, Required: true},
				{Key: "credits", Label: "Credits", Kind: KindNumber, Required: true, Min: bound(1), Max: bound(10)},
				{Key: "dept_id", Label: "Dept ID", Kind: KindNumber, Required: true},
			},
		},
		{
			Name: "teach", Label: "Teaching", Path: "teach", ID: "teach_id",
			Columns: []Column{
				idCol("teach_id"),
				{Key: "teacher_id", Label: "Teacher"},
				{Key: "course_id", Label: "Course"},
				{Key: "semester", Label: "Semester"},
			},
			Fields: []Field{
				{Key: "teacher_id", Label: "Teacher ID", Kind: KindNumber, Required: true},
				{Key: "course_id", Label: "Course ID", Kind: KindNumber, Required: true},
				{Key: "semester", Label: "Semester", Kind: KindText, Required: true},
			},
		},
		{
			Name: "enroll", Label: "Enrollments", Path: "enroll", ID: "enroll_id",
			Columns: []Column{
				idCol("enroll_id"),
				{Key: "student_id", Label: "Student"},
				{Key: "course_id", Label: "Course"},
				{Key: "grade", Label: "Grade"},
			},
			Fields: []Field{
				{Key: "student_id", Label: "Student ID", Kind: KindNumber, Required: true},
				{Key: "course_id", Label: "Course ID", Kind: KindNumber, Required: true},
				{Key: "grade", Label: "Grade (0-100, nullable)", Kind: KindNumber, Min: bound(0), Max: bound(100)},
			},
		},
		{
			Name: "room", Label: "Rooms", Path: "room", ID: "room_id",
			Columns: []Column{
				idCol("room_id"),
				{Key: "building", Label: "Building"},
				{Key: "room_num", Label: "Room"},
			},
			Fields: []Field{
				{Key: "building", Label: "Building", Kind: KindText, Required: true},
				{Key: "room_num", Label: "Room", Kind: KindText, Required: true},
			},
		},
		{
			Name: "sched", Label: "Schedule", Path: "sched", ID: "sched_id",
			Columns: []Column{
				idCol("sched_id"),
				{Key: "course_id", Label: "Course"},
				{Key: "room_id", Label: "Room"},
				{Key: "day_name", Label: "Day"},
				{Key: "start_time", Label: "Start"},
				{Key: "end_time", Label: "End"},
			},
			Fields: []Field{
				{Key: "course_id", Label: "Course ID", Kind: KindNumber, Required: true},
				{Key: "room_id", Label: "Room ID", Kind: KindNumber, Required: true},
				{Key: "day_name", Label: "Day (Mon..Fri)", Kind: KindText, Required: true},
				{Key: "start_time", Label: "Start (HH:MM)", Kind: KindTime, Required: true},
				{Key: "end_time", Label: "End (HH:MM)", Kind: KindTime, Required: true},
			},
		},
		{
			Name: "employee", Label: "Employees", Path: "employee", ID: "emp_id",
			Columns: []Column{
				idCol("emp_id"),
				{Key: "fullname", Label: "Full name"},
				{Key: "manager_id", Label: "Manager"},
				{Key: "dept_id", Label: "Dept"},
			},
			Fields: []Field{
				{Key: "fullname", Label: "Full name", Kind: KindText, Required: true},
				{Key: "manager_id", Label: "Manager ID (nullable)", Kind: KindNumber},
				{Key: "dept_id", Label: "Dept ID (nullable)", Kind: KindNumber},
			},
		},
	}
}
