package mcpserver

// AnnotationFormatContract describes the YAML annotation group format that
// LLM consumers should follow when creating groups.
const AnnotationFormatContract = `# Annotation Group Format Contract

An annotation group is a named, ordered list of annotations bound to columns
of a table. Groups are replayed in order onto a model.

## Structure

` + "```" + `yaml
name: shared product group          # REQUIRED, unique across groups
description: Products by name       # OPTIONAL
shared_dimension: true              # OPTIONAL, default false
data_providers:                     # REQUIRED when shared_dimension is true
  - name: dp
    table_name: product
    connection_ref: <ref returned when the connection was stored>
annotations:
  - column: PRODUCT_NAME            # column id, upper case
    kind: CREATE_ATTRIBUTE
    spec:
      name: Product
      dimension: Shared Product dim
` + "```" + `

## Kinds

| kind | spec fields |
|------|-------------|
| CREATE_ATTRIBUTE | name (required), dimension, hierarchy, parent_attribute, ordinal_field, caption_field, unique |
| CREATE_DIMENSION_KEY | name (required), dimension |
| CREATE_MEASURE | name (required), aggregate_type (required), format_string |
| LINK_DIMENSION | name (required), shared_dimension (required) |

aggregate_type is one of SUM, COUNT, COUNT_DISTINCT, AVERAGE, MINIMUM, MAXIMUM.

## Rules

1. **Order matters.** Annotations are applied in document order. A
   ` + "`" + `parent_attribute` + "`" + ` must name an attribute declared earlier in the same
   dimension, except in shared groups where order is resolved for you.
2. **Column ids** are the upper-case physical column names of the table.
3. **Shared dimensions** (` + "`" + `shared_dimension: true` + "`" + `) carry only
   CREATE_ATTRIBUTE and CREATE_DIMENSION_KEY annotations, exactly one key, and a
   single dimension name (or none). They need at least one data provider with
   both table_name and connection_ref.
4. **LINK_DIMENSION** is placed on a foreign key column of the fact table and
   names a stored shared group in ` + "`" + `shared_dimension` + "`" + `. The linked
   dimension is appended after every existing dimension usage.
5. **Ordinals** in the file are ignored; position in the list wins.

## Example

` + "```" + `yaml
name: order measures
annotations:
  - column: QUANTITYORDERED
    kind: CREATE_MEASURE
    spec:
      name: Quantity
      aggregate_type: SUM
  - column: PRODUCT_ID
    kind: LINK_DIMENSION
    spec:
      name: Product
      shared_dimension: shared product group
` + "```" + `
`
