package location

// Group ties a curated popular-area name to the alternate spellings, district
// names and station aliases that listings use for the same neighbourhood.
type Group struct {
	Canonical string
	Synonyms  []string
}

// PopularAreas is the curated synonym table. Every spelling in a group is a
// lookup key for the whole group.
var PopularAreas = []Group{
	{Canonical: "พระราม 9", Synonyms: []string{"Rama 9", "Rama IX", "Phra Ram 9", "พระราม9", "MRT Phra Ram 9"}},
	{Canonical: "รัชดาภิเษก", Synonyms: []string{"รัชดา", "Ratchada", "Ratchadaphisek", "ห้วยขวาง", "Huai Khwang", "MRT Thailand Cultural Centre"}},
	{Canonical: "สุขุมวิท", Synonyms: []string{"Sukhumvit", "อโศก", "Asok", "Asoke", "นานา", "Nana", "พร้อมพงษ์", "Phrom Phong", "BTS Asok"}},
	{Canonical: "ทองหล่อ", Synonyms: []string{"Thong Lo", "Thonglor", "Thong Lor", "BTS Thong Lo"}},
	{Canonical: "เอกมัย", Synonyms: []string{"Ekkamai", "Ekamai", "BTS Ekkamai"}},
	{Canonical: "อ่อนนุช", Synonyms: []string{"On Nut", "Onnut", "BTS On Nut"}},
	{Canonical: "บางนา", Synonyms: []string{"Bang Na", "Bangna", "อุดมสุข", "Udom Suk", "BTS Bang Na"}},
	{Canonical: "สีลม", Synonyms: []string{"Silom", "ศาลาแดง", "Sala Daeng", "บางรัก", "Bang Rak", "BTS Sala Daeng"}},
	{Canonical: "สาทร", Synonyms: []string{"Sathorn", "Sathon", "ช่องนนทรี", "Chong Nonsi", "BTS Chong Nonsi"}},
	{Canonical: "ปทุมวัน", Synonyms: []string{"Pathum Wan", "Pathumwan", "สยาม", "Siam", "ชิดลม", "Chit Lom", "Chidlom", "เพลินจิต", "Ploenchit"}},
	{Canonical: "อารีย์", Synonyms: []string{"Ari", "Aree", "พญาไท", "Phaya Thai", "BTS Ari"}},
	{Canonical: "ลาดพร้าว", Synonyms: []string{"Lat Phrao", "Ladprao", "Lad Prao", "จตุจักร", "Chatuchak", "MRT Lat Phrao"}},
	{Canonical: "บางซื่อ", Synonyms: []string{"Bang Sue", "Bangsue", "MRT Bang Sue"}},
	{Canonical: "พระราม 3", Synonyms: []string{"Rama 3", "Rama III", "Phra Ram 3", "พระราม3", "ยานนาวา", "Yan Nawa"}},
	{Canonical: "บางกะปิ", Synonyms: []string{"Bang Kapi", "Bangkapi", "เดอะมอลล์บางกะปิ"}},
	{Canonical: "แจ้งวัฒนะ", Synonyms: []string{"Chaeng Watthana", "Chaengwattana", "เมืองทองธานี", "Muang Thong Thani"}},
}

// MetroMarkers are province spellings that mark a listing as inside the
// Bangkok metropolitan region.
var MetroMarkers = []string{
	"กรุงเทพ", "bangkok", "krung thep",
	"นนทบุรี", "nonthaburi",
	"สมุทรปราการ", "samut prakan",
	"ปทุมธานี", "pathum thani",
}
