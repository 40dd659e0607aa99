package seeder

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/flashseed/internal/types"
	"github.com/google/uuid"
)

// ValueGenerator maps a domain type and its size constraint to a literal.
// Unknown types yield nil, which is written as NULL.
type ValueGenerator interface {
	Generate(dataType string, size int) interface{}
}

// ColumnGenerator is implemented by generators that can use the column name
// to pick a more realistic value for ordinary columns.
type ColumnGenerator interface {
	GenerateForColumn(col types.Column) interface{}
}

type typeKind int

const (
	kindUnknown typeKind = iota
	kindInt
	kindBit
	kindBool
	kindText
	kindChar
	kindDate
	kindDateTime
	kindTime
	kindFloat
	kindDecimal
	kindUUID
	kindBinary
	kindXML
	kindJSON
)

var typeKinds = map[string]typeKind{
	"int": kindInt, "integer": kindInt, "int2": kindInt, "int4": kindInt, "int8": kindInt,
	"smallint": kindInt, "tinyint": kindInt, "mediumint": kindInt, "bigint": kindInt,
	"serial": kindInt, "smallserial": kindInt, "bigserial": kindInt,
	"serial2": kindInt, "serial4": kindInt, "serial8": kindInt,
	"bit": kindBit,
	"bool": kindBool, "boolean": kindBool,
	"varchar": kindText, "nvarchar": kindText, "character varying": kindText,
	"text": kindText, "ntext": kindText, "tinytext": kindText, "mediumtext": kindText,
	"longtext": kindText, "clob": kindText, "citext": kindText, "name": kindText,
	"char": kindChar, "nchar": kindChar, "character": kindChar, "bpchar": kindChar,
	"date": kindDate,
	"datetime": kindDateTime, "datetime2": kindDateTime, "datetimeoffset": kindDateTime,
	"smalldatetime": kindDateTime, "timestamp": kindDateTime, "timestamptz": kindDateTime,
	"timestamp without time zone": kindDateTime, "timestamp with time zone": kindDateTime,
	"time": kindTime, "timetz": kindTime, "time without time zone": kindTime,
	"float": kindFloat, "float4": kindFloat, "float8": kindFloat, "real": kindFloat,
	"double": kindFloat, "double precision": kindFloat,
	"decimal": kindDecimal, "numeric": kindDecimal, "money": kindDecimal, "smallmoney": kindDecimal,
	"uuid": kindUUID, "uniqueidentifier": kindUUID,
	"binary": kindBinary, "varbinary": kindBinary, "image": kindBinary, "bytea": kindBinary,
	"blob": kindBinary, "tinyblob": kindBinary, "mediumblob": kindBinary, "longblob": kindBinary,
	"xml": kindXML,
	"json": kindJSON, "jsonb": kindJSON,
}

var intRanges = map[string]int64{
	"tinyint":     127,
	"smallint":    math.MaxInt16,
	"int2":        math.MaxInt16,
	"smallserial": math.MaxInt16,
	"serial2":     math.MaxInt16,
	"mediumint":   8388607,
	"bigint":      math.MaxInt64,
	"int8":        math.MaxInt64,
	"bigserial":   math.MaxInt64,
	"serial8":     math.MaxInt64,
}

var words = []string{
	"lorem", "ipsum", "dolor", "sit", "amet", "consectetur", "adipiscing", "elit",
	"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta",
	"data", "system", "network", "cloud", "service", "platform", "market", "growth",
}

// DataGenerator produces synthetic values for SQL domain types.
type DataGenerator struct {
	rand    *rand.Rand
	counter int
}

func NewDataGenerator() *DataGenerator {
	return NewDataGeneratorWithSeed(time.Now().UnixNano())
}

func NewDataGeneratorWithSeed(seed int64) *DataGenerator {
	return &DataGenerator{
		rand: rand.New(rand.NewSource(seed)),
	}
}

// normalizeType lowercases a declared type and drops any size suffix,
// e.g. VARCHAR(255) -> varchar.
func normalizeType(dataType string) string {
	t := strings.ToLower(strings.TrimSpace(dataType))
	if idx := strings.Index(t, "("); idx > 0 {
		t = strings.TrimSpace(t[:idx])
	}
	t = strings.TrimSuffix(t, " unsigned")
	return t
}

func (g *DataGenerator) Generate(dataType string, size int) interface{} {
	base := normalizeType(dataType)

	switch typeKinds[base] {
	case kindInt:
		max, ok := intRanges[base]
		if !ok {
			max = math.MaxInt32
		}
		return g.rand.Int63n(max) + 1
	case kindBit:
		return g.rand.Intn(2)
	case kindBool:
		return g.rand.Intn(2) == 1
	case kindText:
		return truncate(g.generateWords(1+g.rand.Intn(4)), size)
	case kindChar:
		n := size
		if n <= 0 {
			n = 1
		}
		return g.generateLetters(n)
	case kindDate:
		return g.generateTimestamp().Format("2006-01-02")
	case kindDateTime:
		return g.generateTimestamp().Format("2006-01-02 15:04:05")
	case kindTime:
		return g.generateTimestamp().Format("15:04:05")
	case kindFloat:
		return math.Round(g.rand.Float64()*1000000) / 100
	case kindDecimal:
		return g.generateAmount(size)
	case kindUUID:
		return uuid.NewString()
	case kindBinary:
		n := 16
		if size > 0 && size < n {
			n = size
		}
		buf := make([]byte, n)
		g.rand.Read(buf)
		return buf
	case kindXML:
		return "<root><element>" + g.generateWords(3) + "</element></root>"
	case kindJSON:
		doc, _ := json.Marshal(map[string]string{"key": g.generateWord()})
		return string(doc)
	default:
		return nil
	}
}

// GenerateForColumn uses name hints for text columns and falls back to the
// column's domain type otherwise.
func (g *DataGenerator) GenerateForColumn(col types.Column) interface{} {
	if typeKinds[normalizeType(col.DataType)] != kindText {
		return g.Generate(col.DataType, col.Size)
	}

	colLower := strings.ToLower(col.Name)
	var value string
	switch {
	case strings.Contains(colLower, "email"):
		value = g.generateEmail()
	case strings.Contains(colLower, "name"):
		value = g.generateName()
	case strings.Contains(colLower, "url") || strings.Contains(colLower, "link"):
		value = g.generateURL()
	case strings.Contains(colLower, "phone"):
		value = g.generatePhone()
	case strings.Contains(colLower, "address"):
		value = g.generateAddress()
	default:
		return g.Generate(col.DataType, col.Size)
	}
	return truncate(value, col.Size)
}

func truncate(s string, size int) string {
	if size > 0 && len(s) > size {
		return s[:size]
	}
	return s
}

func (g *DataGenerator) generateWord() string {
	return words[g.rand.Intn(len(words))]
}

func (g *DataGenerator) generateWords(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = g.generateWord()
	}
	return strings.Join(parts, " ")
}

func (g *DataGenerator) generateLetters(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[g.rand.Intn(len(letters))]
	}
	return string(b)
}

// generateAmount returns a decimal literal with two fractional digits that
// fits the given precision.
func (g *DataGenerator) generateAmount(precision int) string {
	digits := 6
	if precision > 0 {
		digits = precision - 2
	}
	if digits > 12 {
		digits = 12
	}
	if digits <= 0 {
		return fmt.Sprintf("0.%02d", g.rand.Intn(100))
	}
	max := int64(math.Pow10(digits))
	return fmt.Sprintf("%d.%02d", g.rand.Int63n(max), g.rand.Intn(100))
}

func (g *DataGenerator) generateName() string {
	firstNames := []string{"John", "Jane", "Alice", "Bob", "Charlie", "Diana", "Eve", "Frank", "Grace", "Henry"}
	lastNames := []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez"}
	return firstNames[g.rand.Intn(len(firstNames))] + " " + lastNames[g.rand.Intn(len(lastNames))]
}

func (g *DataGenerator) generateEmail() string {
	g.counter++
	domains := []string{"example.com", "test.com", "demo.com", "mail.com"}
	return fmt.Sprintf("user%d_%d@%s", g.counter, g.rand.Intn(100000), domains[g.rand.Intn(len(domains))])
}

func (g *DataGenerator) generateURL() string {
	return fmt.Sprintf("https://example.com/page/%d", g.rand.Intn(1000))
}

func (g *DataGenerator) generatePhone() string {
	return fmt.Sprintf("+1-%03d-%03d-%04d", g.rand.Intn(1000), g.rand.Intn(1000), g.rand.Intn(10000))
}

func (g *DataGenerator) generateAddress() string {
	return fmt.Sprintf("%d Main Street, City, State %05d", g.rand.Intn(9999)+1, g.rand.Intn(100000))
}

func (g *DataGenerator) generateTimestamp() time.Time {
	days := g.rand.Intn(365)
	seconds := g.rand.Intn(86400)
	return time.Now().UTC().AddDate(0, 0, -days).Add(-time.Duration(seconds) * time.Second)
}
