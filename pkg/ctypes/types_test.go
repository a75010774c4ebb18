package ctypes

import "testing"

func TestSizeOf(t *testing.T) {
	tests := []struct {
		name     string
		t        Type
		expected int64
		wantErr  bool
	}{
		{"char", Char(), 1, false},
		{"int", Int(), 2, false},
		{"bool", Bool(), 2, false},
		{"long", Long(), 4, false},
		{"long long", LongLong(), 8, false},
		{"pointer", Pointer(Long()), 2, false},
		{"array of int", ArrayOf(Int(), 4), 8, false},
		{"array of array", ArrayOf(ArrayOf(Char(), 3), 2), 6, false},
		{"incomplete array", ArrayOf(Int(), -1), 0, true},
		{"void", Void(), 0, true},
		{"function", Function(Int(), nil, false), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SizeOf(tt.t)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SizeOf(%s) error = %v, wantErr %v", tt.t, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("SizeOf(%s) = %d, want %d", tt.t, got, tt.expected)
			}
		})
	}
}

func TestRank(t *testing.T) {
	order := []Type{Bool(), Char(), Int(), Long(), LongLong()}
	for i := 1; i < len(order); i++ {
		if Rank(order[i-1]) >= Rank(order[i]) {
			t.Errorf("Rank(%s) = %d not below Rank(%s) = %d",
				order[i-1], Rank(order[i-1]), order[i], Rank(order[i]))
		}
	}
	if Rank(Short()) != Rank(Int()) {
		t.Errorf("short and int should share a rank on this target")
	}
	e := &Enum{}
	if Rank(EnumType(e)) != Rank(Int()) {
		t.Errorf("enums should rank as int")
	}
	if Rank(Pointer(Int())) != -1 {
		t.Errorf("non-integer types should have rank -1")
	}
}

func TestBitWidth(t *testing.T) {
	tests := []struct {
		t        Type
		expected int
	}{
		{Char(), 8},
		{Int(), 16},
		{Bool(), 16},
		{Long(), 32},
		{LongLong(), 64},
		{Pointer(Char()), 16},
		{ArrayOf(Int(), 3), 16},
		{Void(), 0},
	}
	for _, tt := range tests {
		if got := BitWidth(tt.t); got != tt.expected {
			t.Errorf("BitWidth(%s) = %d, want %d", tt.t, got, tt.expected)
		}
	}
}

func TestEqual(t *testing.T) {
	r1 := &Record{Kind: Struct, Name: "s"}
	r2 := &Record{Kind: Struct, Name: "s"}
	tests := []struct {
		name     string
		a, b     Type
		expected bool
	}{
		{"same int", Int(), Int(), true},
		{"sign differs", Int(), UInt(), false},
		{"size differs", Int(), Long(), false},
		{"pointers recurse", Pointer(Int()), Pointer(Int()), true},
		{"pointee differs", Pointer(Int()), Pointer(Char()), false},
		{"arrays by size", ArrayOf(Int(), 3), ArrayOf(Int(), 4), false},
		{"records by identity", RecordType(r1), RecordType(r2), false},
		{"same record def", RecordType(r1), RecordType(r1), true},
		{"function prototypes", Function(Int(), []Type{Int()}, false), Function(Int(), []Type{Int()}, false), true},
		{"variadic differs", Function(Int(), []Type{Int()}, true), Function(Int(), []Type{Int()}, false), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.expected {
				t.Errorf("Equal(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestClone(t *testing.T) {
	orig := ArrayOf(Pointer(Int()), 5)
	c := Clone(orig)
	if !Equal(orig, c) {
		t.Fatalf("clone not equal: got %#v, want %#v", c, orig)
	}
	r := &Record{Kind: Struct, Name: "s"}
	rc := Clone(RecordType(r))
	if rc.(Trecord).Def != r {
		t.Errorf("record definitions must stay shared across Clone")
	}
}

func TestCompose(t *testing.T) {
	tests := []struct {
		name     string
		old, new Type
		expected Type
		wantErr  bool
	}{
		{
			"incomplete array completes",
			ArrayOf(Int(), -1), ArrayOf(Int(), 4),
			ArrayOf(Int(), 4), false,
		},
		{
			"sized array keeps size",
			ArrayOf(Int(), 4), ArrayOf(Int(), -1),
			ArrayOf(Int(), 4), false,
		},
		{
			"conflicting array sizes",
			ArrayOf(Int(), 4), ArrayOf(Int(), 5),
			nil, true,
		},
		{
			"no-proto completes against prototype",
			Function(Int(), nil, false), Function(Int(), []Type{Int()}, false),
			Function(Int(), []Type{Int()}, false), false,
		},
		{
			"conflicting signatures",
			Function(Int(), []Type{Int()}, false), Function(Int(), []Type{Long()}, false),
			nil, true,
		},
		{
			"object type mismatch",
			Int(), Long(),
			nil, true,
		},
		{
			"identical scalars",
			Long(), Long(),
			Long(), false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compose(tt.old, tt.new)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Compose error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !Equal(got, tt.expected) {
				t.Errorf("Compose = %#v, want %#v", got, tt.expected)
			}
		})
	}
}

func TestPointerCompatible(t *testing.T) {
	e := &Enum{}
	tests := []struct {
		name     string
		a, b     Type
		expected bool
	}{
		{"identical", Int(), Int(), true},
		{"void wildcard left", Void(), Int(), true},
		{"void wildcard right", ArrayOf(Char(), 3), Void(), true},
		{"void pointee one level down", Pointer(Void()), Pointer(Int()), true},
		{"distinct ints", Int(), Long(), false},
		{"enum against int", EnumType(e), Int(), true},
		{"nested pointers", Pointer(Pointer(Int())), Pointer(Pointer(Int())), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointerCompatible(tt.a, tt.b); got != tt.expected {
				t.Errorf("PointerCompatible(%s, %s) = %v, want %v",
					tt.a, tt.b, got, tt.expected)
			}
		})
	}
}
