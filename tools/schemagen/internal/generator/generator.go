// Package generator renders static schema registration files from dumped
// entity descriptors.
package generator

import (
	"errors"
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/gaborage/go-mortar/tools/schemagen/internal/models"
)

const schemaPkg = "github.com/gaborage/go-mortar/schema"

// ErrNoEntities means the dump file held an empty entity list.
var ErrNoEntities = errors.New("schema dump contains no entities")

// File renders the generated registration file. The emitted code declares
// RegisterStaticSchemas, which installs one schema.Static descriptor per
// dumped entity; it must be placed in the package that declares the entity
// types so they can be referenced unqualified.
func File(pkg string, entities []models.Entity) (*jen.File, error) {
	if pkg == "" {
		return nil, errors.New("package name is required")
	}
	if len(entities) == 0 {
		return nil, ErrNoEntities
	}
	for _, e := range entities {
		if e.Type == "" {
			return nil, errors.New("dumped entity is missing a type name")
		}
		if len(e.Columns) == 0 {
			return nil, fmt.Errorf("entity %s has no columns", e.Type)
		}
	}

	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by go-mortar-schemagen. DO NOT EDIT.")

	f.Comment("RegisterStaticSchemas installs pre-built entity descriptors so mapped")
	f.Comment("types never touch struct-tag parsing at runtime.")
	f.Func().Id("RegisterStaticSchemas").
		Params(jen.Id("r").Op("*").Qual(schemaPkg, "Registry")).
		Error().
		BlockFunc(func(g *jen.Group) {
			for _, e := range entities {
				g.If(
					jen.Err().Op(":=").Id("r").Dot("RegisterStatic").Call(staticLiteral(e)),
					jen.Err().Op("!=").Nil(),
				).Block(
					jen.Return(jen.Qual("fmt", "Errorf").Call(jen.Lit(e.Type+": %w"), jen.Err())),
				)
			}
			g.Return(jen.Nil())
		})

	return f, nil
}

func staticLiteral(e models.Entity) *jen.Statement {
	return jen.Qual(schemaPkg, "Static").Values(jen.Dict{
		jen.Id("Type"):    jen.Qual("reflect", "TypeOf").Call(jen.Id(e.Type).Values()),
		jen.Id("Table"):   jen.Lit(e.Table),
		jen.Id("Columns"): columnsLiteral(e.Columns),
	})
}

func columnsLiteral(columns []models.Column) *jen.Statement {
	return jen.Index().Qual(schemaPkg, "StaticColumn").ValuesFunc(func(g *jen.Group) {
		for _, c := range columns {
			g.Values(columnDict(c))
		}
	})
}

func columnDict(c models.Column) jen.Dict {
	d := jen.Dict{
		jen.Id("Field"):  jen.Lit(c.Field),
		jen.Id("Column"): jen.Lit(c.Column),
	}
	if c.ID {
		d[jen.Id("ID")] = jen.Lit(true)
	}
	if c.Version {
		d[jen.Id("Version")] = jen.Lit(true)
	}
	if c.Embedded {
		d[jen.Id("Embedded")] = jen.Lit(true)
	}
	if c.ReadOnly {
		d[jen.Id("ReadOnly")] = jen.Lit(true)
	}
	return d
}
