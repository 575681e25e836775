package pipeline

// ExtractionField describes one field the extraction flow pulls out of a
// declaration document. Query drives retrieval, Instructions go into the
// isolated prompt for that field.
type ExtractionField struct {
	Name         string
	Query        string
	Instructions string
}

// DefaultExtractionFields returns the field registry for supplier
// declaration assessment. Each field is retrieved and prompted in
// isolation so one field's context cannot contaminate another's answer.
func DefaultExtractionFields() []ExtractionField {
	return []ExtractionField{
		{
			Name:  "material_id",
			Query: "Extract the material_id (same as product number or part number) from the document.",
			Instructions: `material_id is the exact material, product or part code as written in the document.
Look for labels such as "Material", "Material ID", "Part No", "Product #" or "Item".
If no explicit code is present, infer it from the document filename or header codes.
Return one JSON object: {"material_id": "<code>"}.`,
		},
		{
			Name:  "supplier_name",
			Query: "Extract the supplier (vendor) name from the document.",
			Instructions: `supplier_name is the company providing or manufacturing the product.
Look for company names in the letterhead, signature block, document header,
or any company mentioned as the document sender or author.
Treat capitalized word sequences that could be a company name as a valid supplier_name,
and include the full official name even if it contains generic words.
If no clear company name is found, return "Not specified".
Return one JSON object: {"supplier_name": "<company>"}.`,
		},
		{
			Name:  "declaration_date",
			Query: "Extract the date of the declaration from the document.",
			Instructions: `declaration_date is the date the declaration was issued or signed,
formatted YYYY-MM-DD where possible, otherwise exactly as written.
Return one JSON object: {"declaration_date": "<date>"}.`,
		},
		{
			Name:  "ppwr_compliant",
			Query: "Does the document declare compliance with packaging regulations (PPWR, PPWD 94/62/EC)?",
			Instructions: `ppwr_compliant is a boolean. Use true when the document affirms compliance
with packaging waste regulations, false when it denies or reports non-compliance.
Return one JSON object: {"ppwr_compliant": true} or {"ppwr_compliant": false}.`,
		},
		{
			Name:  "packaging_recyclability",
			Query: "Extract the recyclability statement for the packaging from the document.",
			Instructions: `packaging_recyclability is a short string describing recyclability,
for example "Recyclable", "Partially recyclable" or "Not recyclable".
Return one JSON object: {"packaging_recyclability": "<statement>"}.`,
		},
		{
			Name:  "recycled_content_percent",
			Query: "Extract the percentage of recycled content from the document.",
			Instructions: `recycled_content_percent is a number between 0 and 100.
Only report a value explicitly stated in the document.
Return one JSON object: {"recycled_content_percent": <number>}.`,
		},
		{
			Name:  "restricted_substances",
			Query: "Extract the restricted substances mentioned in the document.",
			Instructions: `restricted_substances is a list of substance names the document reports
as present, restricted or declared, such as lead, cadmium or hexavalent chromium.
Substances stated as absent or below limits are not restricted_substances.
Return one JSON object: {"restricted_substances": ["<substance>", ...]} or an empty list.`,
		},
		{
			Name:  "notes",
			Query: "Extract any relevant notes or qualifiers about the declaration from the document.",
			Instructions: `notes carries relevant qualifiers, exemptions or caveats stated in the
document, as one short string.
Return one JSON object: {"notes": "<text>"}.`,
		},
		{
			Name:  "regulatory_mentions",
			Query: "Extract sentences that cite packaging regulations or restricted heavy metals.",
			Instructions: `Extract a regulatory mention whenever any target appears in the text,
matching substrings case-insensitively:
- "PPWD 94/62/EC": the text contains "94/62/EC", "94/62 EC", "94/62",
  "Packaging and Packaging Waste Directive", "Packaging Directive" or "PPWD".
- "PPWD 94/62/1": the text contains "94/62/1".
- "PPWR (EU) 2025/40": the text contains "Packaging and Packaging Waste Regulation",
  "PPWR" or "2025/40".
- "Lead (Pb)": the text mentions lead or Pb as a substance.
- "Cadmium (Cd)": the text mentions cadmium or Cd as a substance.
- "Hexavalent Chromium (Cr6+)": the text contains "hexavalent chromium", "Cr6" or "Cr(VI)".
Each mention is an object with "keyword" (one of the target strings above) and
"text" (the exact sentence or short passage containing the match). Capture a
mention even when the sentence affirms compliance, as long as the keyword appears.
Do not invent text.
Return one JSON object: {"regulatory_mentions": [{"keyword": "...", "text": "..."}, ...]}
or {"regulatory_mentions": []} when no target occurs.`,
		},
	}
}
