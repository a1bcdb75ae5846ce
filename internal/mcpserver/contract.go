package mcpserver

// FrontmatterFormat describes the section file format that LLM consumers
// should follow when writing sections.
const FrontmatterFormat = `# folio Section Format

Every section is one Markdown file named ` + "`<slug>.md`" + ` in the content
directory. The slug is the file name without the extension.

## Structure

` + "```" + `markdown
---
order: 1
title: "Hello"
layout: full-width
sidebar_meta:
  - label: "Location"
    value: "Berlin"
---

Body text in Markdown.
` + "```" + `

## Rules

1. The block starts at the first line with ` + "`---`" + ` and ends at the next ` + "`---`" + ` line.
2. ` + "`order`" + ` and ` + "`title`" + ` always come first. Sections are shown by ascending
   ` + "`order`" + `; ties keep file name order.
3. Each other line is ` + "`key: value`" + `. Values made only of digits are integers.
   Other values are strings; surrounding quotes are removed when read and
   written back for strings.
4. A key with an empty value opens a list of label/value pairs, written as
   ` + "`  - label: \"...\"`" + ` followed by ` + "`    value: \"...\"`" + `.
5. Keys are written in the order they were read.

## Body

Supported blocks: headings, paragraphs, lists, images, blockquotes, fenced
code and horizontal rules. Inline: ` + "`**bold**`" + `, ` + "`*italic*`" + `, ` + "`[text](href)`" + `
and ` + "`` `code` ``" + `. A paragraph holding a single image is an image block;
consecutive images form a collage. A rule splits the section into parts.
A blockquote ending in ` + "`– Name`" + ` is attributed to Name.
`
